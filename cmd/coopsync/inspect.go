package main

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/coopsync-dev/coopsync/pkg/protocol"
)

func inspectCmd(c *cli) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "inspect [hex]",
		Short: "Decode captured envelopes",
		Long: `Decode one or more concatenated envelopes and print each message.

The frames are read as hex from the arguments, or from stdin when no
argument is given. With --raw, stdin is read as binary.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readFrames(cmd.InOrStdin(), args, raw)
			if err != nil {
				return err
			}
			codec := protocol.NewCodec(protocol.WithCompression(c.cfg.Protocol.CompressThreshold))
			return inspect(cmd.OutOrStdout(), codec, data)
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "read binary frames from stdin")

	return cmd
}

func readFrames(in io.Reader, args []string, raw bool) ([]byte, error) {
	if len(args) > 0 {
		return decodeHex(strings.Join(args, ""))
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return nil, err
	}
	if raw {
		return data, nil
	}
	return decodeHex(string(data))
}

func decodeHex(s string) ([]byte, error) {
	s = strings.Join(strings.Fields(s), "")
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("inspect: %w", err)
	}
	return b, nil
}

// inspect prints every envelope in data. It stops at the first malformed
// envelope.
func inspect(w io.Writer, codec *protocol.Codec, data []byte) error {
	if len(data) == 0 {
		return protocol.ErrEmptyInput
	}
	r := bytes.NewReader(data)
	for i := 0; ; i++ {
		env, err := protocol.ReadEnvelope(r)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("envelope %d: %w", i, err)
		}
		tag := protocol.Tag(binary.BigEndian.Uint16(env[:protocol.TagSize]))

		m, err := codec.Decode(env)
		if err != nil {
			return fmt.Errorf("envelope %d: %w", i, err)
		}
		if m == nil {
			fmt.Fprintf(w, "--- #%d tag=%d unknown (%d bytes)\n", i, uint16(tag), len(env))
			continue
		}
		fmt.Fprintf(w, "--- #%d tag=%d %s (%d bytes)\n", i, uint16(tag), tag, len(env))
		body, err := yaml.Marshal(m)
		if err != nil {
			return err
		}
		if _, err := w.Write(body); err != nil {
			return err
		}
	}
}
