package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"keeptest/internal/report"
)

// runMenu is the interactive discovery loop: scan the directory, show the
// candidates, and dispatch on the user's numeric choice until exit. A
// directory with no candidates prints the empty message and returns without
// entering the loop.
func runMenu() error {
	scanner := newScanner()
	candidates, err := scanner.Scan(dir)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		fmt.Println(report.NoImplementations(dir))
		return nil
	}

	stdin := bufio.NewScanner(os.Stdin)
	for {
		n := len(candidates)
		fmt.Println(report.Listing(candidates))
		fmt.Println(report.Menu(n))
		fmt.Print("> ")

		if !stdin.Scan() {
			fmt.Println()
			fmt.Println(report.Goodbye())
			return nil
		}
		choice, err := strconv.Atoi(strings.TrimSpace(stdin.Text()))
		if err != nil {
			fmt.Println("Please enter a number.")
			continue
		}

		switch {
		case choice == 0:
			fmt.Println(report.Goodbye())
			return nil

		case choice >= 1 && choice <= n:
			c := candidates[choice-1]
			if err := runTest(c); err != nil {
				fmt.Println(report.Failure(c.Path, err))
			}

		case choice == n+1:
			runAll(candidates)

		case choice == n+2:
			candidates, err = scanner.Scan(dir)
			if err != nil {
				return err
			}
			if len(candidates) == 0 {
				fmt.Println(report.NoImplementations(dir))
				return nil
			}

		default:
			fmt.Printf("Choose a number between 0 and %d.\n", n+2)
		}
	}
}
