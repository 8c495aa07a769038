package ferrier

import "io"

// File is a named payload carried inside request inputs. Query-key
// comparison treats it as equal to another File with the same name, size,
// and content type; the contents are never read for comparison.
type File struct {
	Name   string
	Size   int64
	Type   string
	Reader io.Reader
}

// FileName implements structeq.FileLike.
func (f File) FileName() string { return f.Name }

// FileSize implements structeq.FileLike.
func (f File) FileSize() int64 { return f.Size }

// FileType implements structeq.FileLike.
func (f File) FileType() string { return f.Type }
