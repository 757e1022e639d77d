package uploads

import (
	"mime"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
)

// fallbackContentType is used when neither the extension nor the bytes are conclusive.
const fallbackContentType = "application/octet-stream"

// DetectContentType determines the MIME type of the file at path. The
// extension is consulted first; when it is unknown, the file's actual bytes
// are sniffed. The name may differ from path when the file still lives in a
// staging location under a temporary name.
func DetectContentType(name, path string) string {
	if byExt := mime.TypeByExtension(filepath.Ext(name)); byExt != "" {
		// mime.TypeByExtension may append a charset parameter; keep only the type.
		if mt, _, err := mime.ParseMediaType(byExt); err == nil {
			return mt
		}

		return byExt
	}

	if mt, err := mimetype.DetectFile(path); err == nil && mt != nil {
		detected := mt.String()
		if mt, _, err := mime.ParseMediaType(detected); err == nil {
			return mt
		}

		return detected
	}

	return fallbackContentType
}
