package constants

// HeaderSeparatorLength is how many characters wide the CLI header rule is.
const HeaderSeparatorLength = 50
