package assets

import (
	"embed"
	"io"
)

//go:embed dictionary.txt
var FS embed.FS

// Dictionary opens the embedded default word list.
func Dictionary() (io.ReadCloser, error) {
	return FS.Open("dictionary.txt")
}
