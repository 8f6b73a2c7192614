package sync

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	goupdate "github.com/doitdistributed/go-update"
	"github.com/mitchellh/go-ps"

	"github.com/oshokin/chromedriver-sync/internal/logger"
)

// driverFileMode is the permission set applied to the installed driver binary.
const driverFileMode os.FileMode = 0o755

// ensureInstallTarget verifies the automation toolkit directory exists.
// The tool never creates it: an absent target means the toolkit itself is
// not installed and replacing a driver there would be pointless.
func ensureInstallTarget(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return newErrorf(StatusInstallTargetMissing, "install target %s is not accessible: %w", dir, err)
	}

	if !info.IsDir() {
		return newErrorf(StatusInstallTargetMissing, "install target %s is not a directory", dir)
	}

	return nil
}

// extractArchive unpacks the downloaded zip archive into scratchDir,
// replacing any leftovers from a previous run.
func extractArchive(ctx context.Context, archivePath, scratchDir string) error {
	if err := os.RemoveAll(scratchDir); err != nil {
		return newError(StatusExtractionFailed, err)
	}

	if err := os.MkdirAll(scratchDir, 0o755); err != nil {
		return newError(StatusExtractionFailed, err)
	}

	archive, err := zip.OpenReader(archivePath)
	if err != nil {
		// OpenReader hands back a reader even for some rejected archives.
		if archive != nil {
			_ = archive.Close()
		}

		return newErrorf(StatusExtractionFailed, "open archive %s: %w", archivePath, err)
	}

	defer func() {
		_ = archive.Close()
	}()

	for _, entry := range archive.File {
		if err = extractArchiveEntry(entry, scratchDir); err != nil {
			return err
		}
	}

	logger.InfoKV(ctx, "Extracted driver archive", "entries", len(archive.File), "path", scratchDir)

	return nil
}

// extractArchiveEntry writes a single archive entry under scratchDir,
// rejecting paths that escape it.
func extractArchiveEntry(entry *zip.File, scratchDir string) error {
	entryPath := filepath.Join(scratchDir, filepath.FromSlash(entry.Name))
	if !strings.HasPrefix(entryPath, filepath.Clean(scratchDir)+string(os.PathSeparator)) {
		return newErrorf(StatusExtractionFailed, "archive entry %s escapes extraction directory", entry.Name)
	}

	if entry.FileInfo().IsDir() {
		if err := os.MkdirAll(entryPath, 0o755); err != nil {
			return newError(StatusExtractionFailed, err)
		}

		return nil
	}

	if err := os.MkdirAll(filepath.Dir(entryPath), 0o755); err != nil {
		return newError(StatusExtractionFailed, err)
	}

	contents, err := entry.Open()
	if err != nil {
		return newErrorf(StatusExtractionFailed, "read archive entry %s: %w", entry.Name, err)
	}

	defer func() {
		_ = contents.Close()
	}()

	outputFile, err := os.OpenFile(filepath.Clean(entryPath), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, entry.Mode())
	if err != nil {
		return newError(StatusExtractionFailed, err)
	}

	if _, err = io.Copy(outputFile, contents); err != nil { //nolint:gosec // Archive comes from the trusted catalog CDN.
		_ = outputFile.Close()

		return newError(StatusExtractionFailed, err)
	}

	if err = outputFile.Close(); err != nil {
		return newError(StatusExtractionFailed, err)
	}

	return nil
}

// injectDriver moves the extracted driver binary into the install target,
// overwriting the one the automation toolkit currently uses.
func injectDriver(ctx context.Context, extractedPath, targetPath string) error {
	data, err := os.ReadFile(filepath.Clean(extractedPath))
	if err != nil {
		return newErrorf(StatusInjectionFailed, "extracted driver binary unavailable: %w", err)
	}

	// A running driver holds a lock on the target binary on Windows,
	// so stop it first. Best effort only.
	terminateDriverProcesses(ctx, filepath.Base(targetPath))

	if _, err = os.Stat(targetPath); err != nil && os.IsNotExist(err) {
		// go-update needs an existing file to swap on a first install.
		var placeholder *os.File

		placeholder, err = os.Create(filepath.Clean(targetPath))
		if err != nil {
			return newError(StatusInjectionFailed, err)
		}

		if err = placeholder.Close(); err != nil {
			return newError(StatusInjectionFailed, err)
		}
	}

	options := goupdate.Options{
		TargetPath: targetPath,
		TargetMode: driverFileMode,
	}

	if err = goupdate.Apply(bytes.NewReader(data), options); err != nil {
		return newError(StatusInjectionFailed, err)
	}

	oldFileName := targetPath + ".old"
	if _, err = os.Stat(oldFileName); err == nil {
		_ = os.Remove(oldFileName)
	}

	logger.InfoKV(ctx, "Installed driver binary", "path", targetPath)

	return nil
}

// terminateDriverProcesses kills running processes with the driver's
// executable name. Failures are ignored: if the binary is still locked,
// the move itself reports the terminal error.
func terminateDriverProcesses(ctx context.Context, executableName string) {
	processList, err := ps.Processes()
	if err != nil {
		logger.DebugKV(ctx, "Could not list processes", "error", err)
		return
	}

	thisProcessID := os.Getpid()

	for _, process := range processList {
		processID := process.Pid()
		if processID == thisProcessID || process.Executable() != executableName {
			continue
		}

		runningProcess, err := os.FindProcess(processID)
		if err != nil {
			continue
		}

		if err = runningProcess.Kill(); err != nil {
			logger.DebugKV(ctx, "Could not terminate driver process", "pid", processID, "error", err)
			continue
		}

		logger.InfoKV(ctx, "Terminated running driver process", "pid", processID)
	}
}
