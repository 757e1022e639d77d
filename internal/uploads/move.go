package uploads

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"privuploads/pkg/domain"
	"privuploads/pkg/logger"

	"go.uber.org/zap"
)

// MoveFileToPrivateUploads moves a staged file into the private root under a
// {yyyy}/{mm} subdirectory derived from at (or the file's modification time
// when at is zero). The destination filename is de-duplicated with -1, -2…
// suffixes, and the move is recorded in the upload registry.
func (a *API) MoveFileToPrivateUploads(
	ctx context.Context,
	tmpFile string,
	filename string,
	at time.Time) (domain.FileUploadResult, error) {
	fail := func(err error) (domain.FileUploadResult, error) {
		return domain.FileUploadResult{Error: err.Error()}, err
	}

	info, err := os.Stat(tmpFile)
	if err != nil || info.IsDir() {
		return fail(fmt.Errorf("could not stat staged file %s: %w", tmpFile, err))
	}

	if at.IsZero() {
		at = info.ModTime()
	}

	filename = SanitizeFilename(filename)
	if filename == "" {
		return fail(fmt.Errorf("filename %q sanitizes to nothing", filename))
	}

	root, err := a.settings.PrivateDir()
	if err != nil {
		return fail(fmt.Errorf("could not resolve uploads root: %w", err))
	}

	subdir := at.UTC().Format("2006/01")
	destDir := filepath.Join(root, subdir)
	if err := os.MkdirAll(destDir, 0o750); err != nil {
		return fail(fmt.Errorf("could not create %s: %w", destDir, err))
	}

	destName := uniqueFilename(destDir, filename)
	destPath := filepath.Join(destDir, destName)
	if err := moveFile(tmpFile, destPath); err != nil {
		return fail(fmt.Errorf("could not move file into private uploads: %w", err))
	}

	relPath := subdir + "/" + destName
	contentType := DetectContentType(destName, destPath)

	if a.storage != nil {
		if _, err := a.storage.StoreUploads(ctx, domain.Upload{
			Name:        filename,
			Path:        relPath,
			ContentType: contentType,
			SizeBytes:   info.Size(),
		}); err != nil {
			return fail(fmt.Errorf("could not record upload: %w", err))
		}
	}

	logger.Info(ctx, "moved file into private uploads",
		zap.String("path", relPath),
		zap.String("contentType", contentType),
		zap.Int64("sizeBytes", info.Size()))

	return domain.FileUploadResult{
		Path:        relPath,
		URL:         a.settings.PrivateURL() + relPath,
		ContentType: contentType,
	}, nil
}

// uniqueFilename returns name, or name with a -1, -2… suffix before the
// extension, whichever does not yet exist in dir.
func uniqueFilename(dir, name string) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)

	candidate := name
	for i := 1; ; i++ {
		if _, err := os.Stat(filepath.Join(dir, candidate)); os.IsNotExist(err) {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d%s", base, i, ext)
	}
}

// moveFile renames src to dest, falling back to copy+remove when the rename
// crosses filesystems.
func moveFile(src, dest string) error {
	if err := os.Rename(src, dest); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("could not open %s: %w", src, err)
	}
	defer func() {
		_ = in.Close()
	}()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return fmt.Errorf("could not create %s: %w", dest, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dest)

		return fmt.Errorf("could not copy to %s: %w", dest, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("could not close %s: %w", dest, err)
	}

	return os.Remove(src)
}
