package resume

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"code.sajari.com/docconv"
	"go.uber.org/zap"
)

// Extractor turns stored resume files into plain text and owns the uploads
// directory. Extraction never fails past this boundary: unreadable or
// unsupported files come back as empty text with a logged diagnostic, which
// downstream stages treat uniformly as a skip condition.
type Extractor struct {
	uploadsDir string
	logger     *zap.Logger
}

func NewExtractor(uploadsDir string, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{uploadsDir: uploadsDir, logger: logger}
}

// SaveUpload stores an uploaded file under the uploads directory and returns
// its path and size.
func (e *Extractor) SaveUpload(filename string, r io.Reader) (string, int64, error) {
	if err := os.MkdirAll(e.uploadsDir, 0o755); err != nil {
		return "", 0, fmt.Errorf("create uploads dir: %w", err)
	}

	path := filepath.Join(e.uploadsDir, filepath.Base(filename))
	f, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	size, err := io.Copy(f, r)
	if err != nil {
		return "", 0, fmt.Errorf("save file: %w", err)
	}
	return path, size, nil
}

// ExtractText dispatches on file extension. PDF and word-processor formats go
// through docconv; plain text is read directly; anything else is unsupported
// and yields empty text.
func (e *Extractor) ExtractText(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf", ".docx", ".doc", ".rtf", ".odt":
		res, err := docconv.ConvertPath(path)
		if err != nil {
			e.logger.Warn("document text extraction failed",
				zap.String("path", path), zap.Error(err))
			return ""
		}
		return res.Body
	case ".txt":
		b, err := os.ReadFile(path)
		if err != nil {
			e.logger.Warn("text file read failed",
				zap.String("path", path), zap.Error(err))
			return ""
		}
		return string(b)
	default:
		e.logger.Warn("unsupported file type",
			zap.String("path", path), zap.String("ext", filepath.Ext(path)))
		return ""
	}
}
