// Command ecm2 encodes raw CD-ROM disc images to the ECM2 container format
// and decodes them back, auto-detecting direction from the input file.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dcarrasco/ecm2"
	"github.com/dcarrasco/ecm2/archive"
	"github.com/dcarrasco/ecm2/compressor"
	"github.com/dcarrasco/ecm2/container"
)

var (
	input      string
	output     string
	aCompress  string
	dCompress  string
	clevel     int
	extreme    bool
	seekable   bool
	perBlock   int
	force      bool
	keepOutput bool
	fromSector int
)

func init() {
	flag.StringVar(&input, "i", "", "input file path (required)")
	flag.StringVar(&input, "input", "", "input file path (required)")

	flag.StringVar(&output, "o", "", "output file path (default: derived from input)")
	flag.StringVar(&output, "output", "", "output file path (default: derived from input)")

	flag.StringVar(&aCompress, "a", "none", "audio stream compression: zlib, lzma, lz4, flac, none")
	flag.StringVar(&aCompress, "acompression", "none", "audio stream compression: zlib, lzma, lz4, flac, none")

	flag.StringVar(&dCompress, "d", "none", "data stream compression: zlib, lzma, lz4, none")
	flag.StringVar(&dCompress, "dcompression", "none", "data stream compression: zlib, lzma, lz4, none")

	flag.IntVar(&clevel, "c", 5, "compression level, 0-9")
	flag.IntVar(&clevel, "clevel", 5, "compression level, 0-9")

	flag.BoolVar(&extreme, "e", false, "extreme mode for lzma/flac (accepted; output is currently the same without it)")
	flag.BoolVar(&extreme, "extreme-compression", false, "extreme mode for lzma/flac (accepted; output is currently the same without it)")

	flag.BoolVar(&seekable, "s", false, "emit sync points so the result can be decoded from the middle")
	flag.BoolVar(&seekable, "seekable", false, "emit sync points so the result can be decoded from the middle")

	flag.IntVar(&perBlock, "p", 0, "sectors per sync point when -s is set, 1-255")
	flag.IntVar(&perBlock, "sectors-per-block", 0, "sectors per sync point when -s is set, 1-255")

	flag.BoolVar(&force, "f", false, "overwrite the output file if it already exists")
	flag.BoolVar(&force, "force", false, "overwrite the output file if it already exists")

	flag.BoolVar(&keepOutput, "k", false, "don't delete a partially-written output file on error")
	flag.BoolVar(&keepOutput, "keep-output", false, "don't delete a partially-written output file on error")

	flag.IntVar(&fromSector, "r", 0, "decode only from this sector onward; must be a recorded sync point")
	flag.IntVar(&fromSector, "resume-sector", 0, "decode only from this sector onward; must be a recorded sync point")
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s -i <file> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Encodes a raw CD-ROM image to ECM2, or decodes an ECM2 container back\n")
		fmt.Fprintf(os.Stderr, "to a raw image; direction is auto-detected from the input file.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -i game.bin\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -i game.bin -a flac -d lzma -c 9\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -i game.bin.ecm2 -o restored.bin\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -i game.chd\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -i collection.zip\n", os.Args[0])
	}
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if input == "" {
		flag.Usage()
		return errors.New("input file required (-i)")
	}

	src, size, title, closeSrc, role, err := openInput(input)
	if err != nil {
		return err
	}
	defer func() { _ = closeSrc() }()

	outPath := output
	if outPath == "" {
		outPath = deriveOutputPath(input, role)
	}

	if !force {
		if _, err := os.Stat(outPath); err == nil {
			return fmt.Errorf("output file %q already exists (use -f to overwrite)", outPath)
		}
	}

	dst, err := os.OpenFile(outPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}

	switch role {
	case ecm2.RoleEncode:
		err = runEncode(src, size, title, dst)
	case ecm2.RoleDecode:
		err = runDecode(src, dst)
	}

	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil && !keepOutput {
		_ = os.Remove(outPath)
	}
	return err
}

// openInput resolves path to a readable source: a bare raw/ecm2 file, or,
// when path names a .zip/.7z/.rar archive, the first raw disc image member
// inside it (always treated as an encode source — an archived container
// isn't a workflow this CLI supports). title is the name to record in the
// ECM sub-header.
func openInput(path string) (src io.ReaderAt, size int64, title string, closeSrc func() error, role ecm2.Role, err error) {
	if strings.EqualFold(filepath.Ext(path), ".chd") {
		reader, chdSize, closer, err := container.OpenLegacyCHD(path)
		if err != nil {
			return nil, 0, "", nil, 0, err
		}
		return reader, chdSize, filepath.Base(path), closer.Close, ecm2.RoleEncode, nil
	}

	if archive.IsArchiveExtension(strings.ToLower(filepath.Ext(path))) {
		arc, err := archive.Open(path)
		if err != nil {
			return nil, 0, "", nil, 0, err
		}
		member, err := archive.DetectImageFile(arc)
		if err != nil {
			_ = arc.Close()
			return nil, 0, "", nil, 0, err
		}
		reader, memberSize, closer, err := arc.OpenReaderAt(member)
		if err != nil {
			_ = arc.Close()
			return nil, 0, "", nil, 0, err
		}
		closeAll := func() error {
			closeErr := closer.Close()
			if archErr := arc.Close(); closeErr == nil {
				closeErr = archErr
			}
			return closeErr
		}
		return reader, memberSize, filepath.Base(member), closeAll, ecm2.RoleEncode, nil
	}

	if ecm2.IsBlockDevice(path) {
		return nil, 0, "", nil, 0, fmt.Errorf(
			"%q is a block device; dump it to a file first (e.g. with dd) before encoding", path)
	}

	role, err = ecm2.Identify(path)
	if err != nil {
		return nil, 0, "", nil, 0, err
	}
	f, err := os.Open(path) //nolint:gosec // path is user-supplied CLI input by design
	if err != nil {
		return nil, 0, "", nil, 0, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, "", nil, 0, err
	}
	return f, info.Size(), filepath.Base(path), f.Close, role, nil
}

func runEncode(src io.ReaderAt, size int64, title string, dst *os.File) error {
	audio, err := parseCompression(aCompress, true)
	if err != nil {
		return err
	}
	data, err := parseCompression(dCompress, false)
	if err != nil {
		return err
	}

	sectorsPerBlock := 0
	if seekable {
		sectorsPerBlock = perBlock
		if sectorsPerBlock <= 0 {
			sectorsPerBlock = 1
		}
	}

	opts := ecm2.EncodeOptions{
		AudioCompression: audio,
		DataCompression:  data,
		Level:            clevel,
		Extreme:          extreme,
		SectorsPerBlock:  sectorsPerBlock,
		Title:            title,
	}

	report, err := ecm2.Encode(src, size, dst, opts)
	if err != nil {
		return err
	}
	fmt.Printf("encoded %d sectors, %d bytes written\n", report.SectorsTotal, report.BytesWritten)
	return nil
}

func runDecode(src io.ReaderAt, dst *os.File) error {
	var report *ecm2.Report
	var err error
	if fromSector > 0 {
		report, err = ecm2.DecodeFrom(src, dst, uint32(fromSector), ecm2.DecodeOptions{})
	} else {
		report, err = ecm2.Decode(src, dst, ecm2.DecodeOptions{})
	}
	if err != nil {
		return err
	}
	fmt.Printf("decoded %d sectors, %d bytes written\n", report.SectorsTotal, report.BytesWritten)
	return nil
}

// parseCompression maps a CLI compression name to its backend kind.
// allowFlac permits the audio-only "flac" value.
func parseCompression(name string, allowFlac bool) (compressor.Kind, error) {
	switch strings.ToLower(name) {
	case "none", "":
		return compressor.None, nil
	case "zlib":
		return compressor.Zlib, nil
	case "lzma":
		return compressor.Lzma, nil
	case "lz4":
		return compressor.Lz4, nil
	case "flac":
		if !allowFlac {
			return 0, errors.New("flac is only valid for -a/--acompression")
		}
		return compressor.Flac, nil
	default:
		return 0, fmt.Errorf("unknown compression mode: %s", name)
	}
}

// deriveOutputPath picks a default output name when -o is omitted:
// append .ecm2 on encode, or strip a .ecm2 suffix (append .unecm2 if there
// isn't one to strip) on decode.
func deriveOutputPath(in string, role ecm2.Role) string {
	if role == ecm2.RoleEncode {
		return in + ".ecm2"
	}
	if strings.HasSuffix(in, ".ecm2") {
		return strings.TrimSuffix(in, ".ecm2")
	}
	return in + ".unecm2"
}
