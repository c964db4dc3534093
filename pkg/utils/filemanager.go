// =============================================================================
// distiviz - File Manager Utility
// =============================================================================
//
// This module provides the file handling around an ingestion run:
//   - Reading uploaded spreadsheets from disk
//   - File archival (moving ingested inputs)
//   - Export file naming and writing
//   - Directory management
//
// ARCHIVAL STRATEGY:
//   - Input files are moved to the input archive after a successful ingest
//   - Failed files remain in their original location
//   - Exports are written to the output directory via a temp file + rename
//
// =============================================================================

package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxInputBytes caps the size of an uploaded spreadsheet.
const MaxInputBytes = 64 << 20

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations around ingestion and export.
type FileManager struct {
	// OutputDir is where CSV exports are written.
	OutputDir string

	// InputArchiveDir receives ingested input files.
	InputArchiveDir string

	// UseTimestampSubdirs creates date-based subdirectories in the archive.
	// Example: input_archive/2024/01/15/apps.xlsx
	UseTimestampSubdirs bool

	// ArchiveOnSuccess determines whether inputs are archived after ingestion.
	ArchiveOnSuccess bool

	now func() time.Time
}

// NewFileManager creates a new FileManager with the specified directories.
func NewFileManager(outputDir, inputArchiveDir string) *FileManager {
	return &FileManager{
		OutputDir:        outputDir,
		InputArchiveDir:  inputArchiveDir,
		ArchiveOnSuccess: true,
		now:              time.Now,
	}
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectories creates the output and archive directories if they don't exist.
//
// RETURNS:
//   - An error if any directory cannot be created.
func (fm *FileManager) EnsureDirectories() error {
	for _, dir := range []string{fm.OutputDir, fm.InputArchiveDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// =============================================================================
// INPUT
// =============================================================================

// ReadInput reads a spreadsheet from disk.
//
// RETURNS:
//   - The file contents.
//   - An error if the file is missing, a directory, or larger than MaxInputBytes.
func ReadInput(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("input %s is a directory", path)
	}
	if info.Size() > MaxInputBytes {
		return nil, fmt.Errorf("input %s is %d bytes, limit is %d", path, info.Size(), MaxInputBytes)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return data, nil
}

// =============================================================================
// FILE ARCHIVAL
// =============================================================================

// ArchiveInputFile moves an input file to the archive directory.
//
// PARAMETERS:
//   - filePath: The path to the file to archive.
//
// RETURNS:
//   - The path to the archived file.
//   - An error if archival fails.
func (fm *FileManager) ArchiveInputFile(filePath string) (string, error) {
	if !fm.ArchiveOnSuccess || fm.InputArchiveDir == "" {
		return filePath, nil
	}

	archivePath := fm.getArchivePath(fm.InputArchiveDir, filePath)
	if err := os.MkdirAll(filepath.Dir(archivePath), 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	if err := os.Rename(filePath, archivePath); err != nil {
		// If rename fails (e.g., cross-device), try copy and delete.
		if err := copyFile(filePath, archivePath); err != nil {
			return "", fmt.Errorf("failed to copy file to archive: %w", err)
		}
		if err := os.Remove(filePath); err != nil {
			return "", fmt.Errorf("failed to remove original file: %w", err)
		}
	}

	return archivePath, nil
}

// getArchivePath constructs the archive path for a file.
func (fm *FileManager) getArchivePath(archiveDir, filePath string) string {
	fileName := filepath.Base(filePath)

	if fm.UseTimestampSubdirs {
		now := fm.clock()
		return filepath.Join(
			archiveDir,
			fmt.Sprintf("%d", now.Year()),
			fmt.Sprintf("%02d", now.Month()),
			fmt.Sprintf("%02d", now.Day()),
			fileName,
		)
	}

	return filepath.Join(archiveDir, fileName)
}

func (fm *FileManager) clock() time.Time {
	if fm.now == nil {
		return time.Now()
	}
	return fm.now()
}

// =============================================================================
// OUTPUT
// =============================================================================

// GenerateOutputFileName generates an export file name.
//
// PARAMETERS:
//   - format: The format string for the file name.
//     Placeholders:
//     {uuid}      - A random UUID
//     {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//     {date}      - Current date (YYYYMMDD)
//     {dataset}   - Dataset name, with ":" replaced by "_"
//   - params: Extra placeholder values.
//
// RETURNS:
//   - The generated file name, always ending in ".csv".
//
// EXAMPLE:
//
//	format: "{dataset}_{timestamp}.csv"
//	params: {"dataset": "campaign:master"}
//	output: "campaign_master_20240115_143022.csv"
func GenerateOutputFileName(format string, params map[string]string) string {
	now := time.Now()

	replacements := map[string]string{
		"{uuid}":      uuid.New().String(),
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
	}
	for key, value := range params {
		replacements["{"+key+"}"] = strings.ReplaceAll(value, ":", "_")
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	if !strings.HasSuffix(strings.ToLower(result), ".csv") {
		result += ".csv"
	}
	return result
}

// WriteOutputFile writes data to name inside the output directory, replacing
// any existing file atomically.
//
// RETURNS:
//   - The path of the written file.
//   - An error if writing fails.
func (fm *FileManager) WriteOutputFile(name string, data []byte) (string, error) {
	path := name
	if !filepath.IsAbs(name) && filepath.Dir(name) == "." {
		path = filepath.Join(fm.OutputDir, name)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".export-*")
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write output file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write output file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("failed to write output file: %w", err)
	}
	return path, nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}
	return destFile.Sync()
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
