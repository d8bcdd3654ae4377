package diff

// separators are the characters that always form a token of their own. They typically appear at
// the beginning or the end of a word.
const separators = " ,.:;?!\"()[]{}"

var isSeparator [256]bool

func init() {
	for i := range len(separators) {
		isSeparator[separators[i]] = true
	}
}

// Tokenize splits s into words and separators. Every separator character becomes a token of its
// own, runs of separators are never merged. Everything between two separators is a single word
// token. Concatenating the tokens yields s again.
//
// All separators are ASCII, so s is scanned byte by byte without ever splitting a multi-byte
// UTF-8 sequence.
func Tokenize(s string) []string {
	var tokens []string
	start := 0
	for i := range len(s) {
		if !isSeparator[s[i]] {
			continue
		}
		if start < i {
			tokens = append(tokens, s[start:i])
		}
		tokens = append(tokens, s[i:i+1])
		start = i + 1
	}
	if start < len(s) {
		tokens = append(tokens, s[start:])
	}
	return tokens
}
