package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/keyfmt/internal/anchor"
	"github.com/dshills/keyfmt/internal/engine/buffer"
)

var anchorCmd = &cobra.Command{
	Use:   "anchor",
	Short: "Inspect caret fingerprints",
	Long: `Anchor exposes the whitespace-insensitive caret fingerprint used to put
the caret back after formatting. Fingerprints are printed Go-quoted because
their trailing spaces are significant.`,
}

var anchorEncodeCmd = &cobra.Command{
	Use:   "encode [flags] <file|->",
	Short: "Print the fingerprint of a caret position",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		buf, err := readBuffer(cmd, args[0])
		if err != nil {
			return err
		}
		caret, err := flagPosition(cmd, "caret", buf)
		if err != nil {
			return err
		}
		from, err := flagPosition(cmd, "from", buf)
		if err != nil {
			return err
		}
		if from > caret {
			return errors.New("--from must not be after --caret")
		}

		fp := anchor.EncodeAt(buf.TextRange(from, buf.Len()), int(caret-from))
		fmt.Fprintln(cmd.OutOrStdout(), strconv.Quote(string(fp)))
		return nil
	},
}

var anchorDecodeCmd = &cobra.Command{
	Use:   "decode [flags] <file|-> <fingerprint>",
	Short: "Locate a fingerprint in a file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		buf, err := readBuffer(cmd, args[0])
		if err != nil {
			return err
		}
		fp, err := parseFingerprint(args[1])
		if err != nil {
			return err
		}
		from, err := flagPosition(cmd, "from", buf)
		if err != nil {
			return err
		}

		res := anchor.Decode(buf.TextRange(from, buf.Len()), fp)
		if !res.Found {
			return fmt.Errorf("fingerprint %s not found", strconv.Quote(string(fp)))
		}
		printOffset(cmd.OutOrStdout(), buf, from+buffer.ByteOffset(res.Offset))
		return nil
	},
}

var anchorRelocateCmd = &cobra.Command{
	Use:   "relocate [flags] <before> <after>",
	Short: "Map a caret in one version of a file to another",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		before, err := readBuffer(cmd, args[0])
		if err != nil {
			return err
		}
		after, err := readBuffer(cmd, args[1])
		if err != nil {
			return err
		}
		caret, err := flagPosition(cmd, "caret", before)
		if err != nil {
			return err
		}

		res := anchor.Relocate(before.Text(), int(caret), after.Text())
		if !res.Found {
			return errors.New("caret could not be relocated: the files differ in more than whitespace before it")
		}
		printOffset(cmd.OutOrStdout(), after, buffer.ByteOffset(res.Offset))
		return nil
	},
}

func init() {
	anchorEncodeCmd.Flags().String("caret", "0", "caret position as OFFSET or LINE:COL (1-based)")
	anchorEncodeCmd.Flags().String("from", "0", "start of the region the fingerprint is relative to")
	anchorDecodeCmd.Flags().String("from", "0", "start of the region to search")
	anchorRelocateCmd.Flags().String("caret", "0", "caret position in <before> as OFFSET or LINE:COL (1-based)")

	anchorCmd.AddCommand(anchorEncodeCmd)
	anchorCmd.AddCommand(anchorDecodeCmd)
	anchorCmd.AddCommand(anchorRelocateCmd)
}

func readBuffer(cmd *cobra.Command, path string) (*buffer.Buffer, error) {
	if path == "-" {
		return buffer.NewBufferFromReader(cmd.InOrStdin())
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return buffer.NewBufferFromReader(f)
}

func flagPosition(cmd *cobra.Command, name string, buf *buffer.Buffer) (buffer.ByteOffset, error) {
	s, _ := cmd.Flags().GetString(name)
	pos, err := parsePosition(s)
	if err != nil {
		return 0, fmt.Errorf("--%s: %w", name, err)
	}
	off := pos.resolve(buf)
	if off > buf.Len() {
		return 0, fmt.Errorf("--%s: offset %d is past the end (%d)", name, off, buf.Len())
	}
	return off, nil
}

// parseFingerprint accepts the quoted form printed by encode as well as a
// raw string.
func parseFingerprint(s string) (anchor.Fingerprint, error) {
	if strings.HasPrefix(s, `"`) {
		raw, err := strconv.Unquote(s)
		if err != nil {
			return "", fmt.Errorf("invalid quoted fingerprint: %w", err)
		}
		s = raw
	}
	return anchor.Fingerprint(s), nil
}

func printOffset(w io.Writer, buf *buffer.Buffer, off buffer.ByteOffset) {
	fmt.Fprintf(w, "%d %s\n", off, formatPoint(buf.OffsetToPoint(off)))
}
