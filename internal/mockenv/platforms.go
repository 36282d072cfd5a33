package mockenv

// Platform is a gaming platform code from the framework's platform
// enumeration.
type Platform string

// Platforms is the bounded set of known platform codes, limited to the
// codes implementations actually reference. Exported to the interpreter as
// enums.<CODE> constants.
var Platforms = map[string]string{
	"A26":   "Atari 2600",
	"A52":   "Atari 5200",
	"A78":   "Atari 7800",
	"AMI":   "Commodore Amiga",
	"AND":   "Android OS",
	"ARC":   "Arcade",
	"BOARD": "Board Game (Physical)",
	"C64":   "Commodore 64",
	"CARD":  "Card Game (Physical)",
	"CPC":   "Amstrad CPC",
	"CV":    "ColecoVision",
	"DC":    "Sega Dreamcast",
	"DOS":   "MS-DOS",
	"FC":    "Nintendo Famicom",
	"GB":    "Nintendo Game Boy",
	"GBA":   "Nintendo Game Boy Advance",
	"GBC":   "Nintendo Game Boy Color",
	"GC":    "Nintendo GameCube",
	"GEN":   "Sega Genesis",
	"GG":    "Sega Game Gear",
	"INTV":  "Intellivision",
	"IOS":   "Apple iOS",
	"JAG":   "Atari Jaguar",
	"LYNX":  "Atari Lynx",
	"META":  "Metagame",
	"MOD":   "Modded Game",
	"MSX":   "MSX",
	"N64":   "Nintendo 64",
	"NDS":   "Nintendo DS",
	"NES":   "Nintendo Entertainment System",
	"NG":    "SNK Neo Geo",
	"PC":    "PC",
	"PCE":   "NEC PC Engine",
	"PS1":   "Sony PlayStation 1",
	"PS2":   "Sony PlayStation 2",
	"PS3":   "Sony PlayStation 3",
	"PS4":   "Sony PlayStation 4",
	"PS5":   "Sony PlayStation 5",
	"PSP":   "Sony PlayStation Portable",
	"SAT":   "Sega Saturn",
	"SCD":   "Sega CD",
	"SFC":   "Nintendo Super Famicom",
	"SMS":   "Sega Master System",
	"SNES":  "Super Nintendo Entertainment System",
	"SW":    "Nintendo Switch",
	"TG16":  "NEC TurboGrafx-16",
	"VB":    "Nintendo Virtual Boy",
	"VITA":  "Sony PlayStation Vita",
	"VR":    "Virtual Reality",
	"WEB":   "Web Browser",
	"WII":   "Nintendo Wii",
	"WIIU":  "Nintendo Wii U",
	"WS":    "Bandai WonderSwan",
	"X360":  "Microsoft Xbox 360",
	"XBOX":  "Microsoft Xbox",
	"XONE":  "Microsoft Xbox One",
	"XSX":   "Microsoft Xbox Series X",
	"ZXS":   "Sinclair ZX Spectrum",
}

// PlatformDescription returns the human-readable name for a platform code,
// or the code itself when unknown.
func PlatformDescription(code string) string {
	if desc, ok := Platforms[code]; ok {
		return desc
	}
	return code
}
