package protocol

import (
	"bytes"
	"errors"
	"io"
	"math/rand"
	"testing"
)

func mustEncode(t *testing.T, m Message) []byte {
	t.Helper()
	data, err := Encode(m)
	if err != nil {
		t.Fatalf("Encode(%T) error = %v", m, err)
	}
	return data
}

func TestDecodeEmptyInput(t *testing.T) {
	for _, in := range [][]byte{nil, {}} {
		m, err := Decode(in)
		if !errors.Is(err, ErrEmptyInput) {
			t.Errorf("Decode(%v) error = %v, want ErrEmptyInput", in, err)
		}
		if m != nil {
			t.Errorf("Decode(%v) = %v, want nil", in, m)
		}
	}
}

func TestDecodeTruncated(t *testing.T) {
	for tag, m := range fixtures() {
		data := mustEncode(t, m)
		half := data[:len(data)/2]

		got, err := Decode(half)
		if !errors.Is(err, ErrMalformedEnvelope) {
			t.Errorf("%s: Decode(half) error = %v, want ErrMalformedEnvelope", tag, err)
		}
		if got != nil {
			t.Errorf("%s: Decode(half) = %v, want nil", tag, got)
		}
	}
}

func TestDecodeEveryPrefixFails(t *testing.T) {
	data := mustEncode(t, fixtures()[TagLobbyUpdates])
	for n := 1; n < len(data); n++ {
		if _, err := Decode(data[:n]); !errors.Is(err, ErrMalformedEnvelope) {
			t.Fatalf("Decode(data[:%d]) error = %v, want ErrMalformedEnvelope", n, err)
		}
	}
}

func TestDecodeUnknownTagIsSilent(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
	}{
		{"random four bytes", []byte{0xFF, 0xFE, 0xFD, 0xFC}},
		{"tag only", []byte{0x7A, 0x00}},
		// The tag is checked before the length, so a bogus length is not
		// reported for an unknown tag.
		{"bogus length", []byte{0xAB, 0xCD, 0x00, 0x7F}},
		{"tag zero", []byte{0x00, 0x00, 0x00, 0x00}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Decode(tt.in)
			if err != nil || m != nil {
				t.Errorf("Decode(%x) = %v, %v; want nil, nil", tt.in, m, err)
			}
		})
	}
}

func TestDecodeRandomBytesNeverPanics(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	buf := make([]byte, 4)
	for i := 0; i < 10000; i++ {
		rng.Read(buf)
		m, err := Decode(buf)
		tag := Tag(uint16(buf[0])<<8 | uint16(buf[1]))
		if _, known := Lookup(tag); !known {
			if m != nil || err != nil {
				t.Fatalf("Decode(%x) = %v, %v; want nil, nil for unknown tag", buf, m, err)
			}
			continue
		}
		if err != nil && !errors.Is(err, ErrMalformedEnvelope) {
			t.Fatalf("Decode(%x) error = %v, want nil or ErrMalformedEnvelope", buf, err)
		}
	}
}

func TestDecodeMalformed(t *testing.T) {
	valid := mustEncode(t, &ChestOpened{ChestID: 1, OwnerID: 2})

	tests := []struct {
		name string
		in   []byte
	}{
		{"single byte", []byte{0x00}},
		{"missing flags", []byte{0x00, byte(TagChestOpened)}},
		{"missing length", []byte{0x00, byte(TagChestOpened), 0x00}},
		{"length beyond buffer", []byte{0x00, byte(TagChestOpened), 0x00, 0x20, 0x01}},
		{"reserved flag", append([]byte{0x00, byte(TagChestOpened), 0x80}, valid[3:]...)},
		{"trailing bytes", append(append([]byte{}, valid...), 0xEE)},
		{"short body", []byte{0x00, byte(TagChestOpened), 0x00, 0x02, 0x00, 0x01}},
		{"invalid bool", []byte{0x00, byte(TagTimerStarted), 0x00, 0x05, 0x02, 0, 0, 0, 1}},
		{"length overflow", []byte{0x00, byte(TagChestOpened), 0x00, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x01}},
		{"compressed garbage", []byte{0x00, byte(TagChestOpened), 0x01, 0x03, 0x01, 0x02, 0x03}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Decode(tt.in)
			if !errors.Is(err, ErrMalformedEnvelope) {
				t.Errorf("Decode(%x) error = %v, want ErrMalformedEnvelope", tt.in, err)
			}
			if m != nil {
				t.Errorf("Decode(%x) = %v, want nil", tt.in, m)
			}
		})
	}
}

func TestDecodeIgnoresUnknownTrailingBodyFields(t *testing.T) {
	// A newer peer appended a field to ChestOpened.
	in := []byte{0x00, byte(TagChestOpened), 0x00, 0x0A, 0, 0, 0, 1, 0, 0, 0, 2, 0xAA, 0xBB}
	m, err := Decode(in)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	got := m.(*ChestOpened)
	if got.ChestID != 1 || got.OwnerID != 2 {
		t.Errorf("Decode() = %+v, want {1 2}", got)
	}
}

func TestEncodeErrors(t *testing.T) {
	if _, err := Encode(nil); !errors.Is(err, ErrNilMessage) {
		t.Errorf("Encode(nil) error = %v, want ErrNilMessage", err)
	}
}

func TestDecodeAll(t *testing.T) {
	var buf []byte
	buf = append(buf, mustEncode(t, &PlayerDied{PlayerID: 1})...)
	// An unknown variant from a newer peer, with a two-byte body.
	buf = append(buf, 0x7F, 0xF0, 0x00, 0x02, 0xAA, 0xBB)
	buf = append(buf, mustEncode(t, &StormStopped{})...)

	msgs, err := DecodeAll(buf)
	if err != nil {
		t.Fatalf("DecodeAll() error = %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("DecodeAll() = %d messages, want 2", len(msgs))
	}
	if _, ok := msgs[0].(*PlayerDied); !ok {
		t.Errorf("msgs[0] = %T, want *PlayerDied", msgs[0])
	}
	if _, ok := msgs[1].(*StormStopped); !ok {
		t.Errorf("msgs[1] = %T, want *StormStopped", msgs[1])
	}

	msgs, err = DecodeAll(append(mustEncode(t, &GameOver{}), 0x00))
	if !errors.Is(err, ErrMalformedEnvelope) {
		t.Errorf("DecodeAll(trailing) error = %v, want ErrMalformedEnvelope", err)
	}
	if len(msgs) != 1 {
		t.Errorf("DecodeAll(trailing) = %d messages, want the 1 decoded before the error", len(msgs))
	}

	if _, err := DecodeAll(nil); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("DecodeAll(nil) error = %v, want ErrEmptyInput", err)
	}
}

func TestReadWriteEnvelope(t *testing.T) {
	var buf bytes.Buffer
	in := []Message{
		&RequestChestOpen{ChestID: 4, RequestingPlayerID: 2},
		fixtures()[TagLobbyUpdates],
		&GameOver{},
	}
	for _, m := range in {
		if err := WriteEnvelope(&buf, m); err != nil {
			t.Fatalf("WriteEnvelope() error = %v", err)
		}
	}

	for i, want := range in {
		raw, err := ReadEnvelope(&buf)
		if err != nil {
			t.Fatalf("ReadEnvelope() #%d error = %v", i, err)
		}
		got, err := Decode(raw)
		if err != nil {
			t.Fatalf("Decode() #%d error = %v", i, err)
		}
		if got.Tag() != want.Tag() {
			t.Errorf("#%d tag = %s, want %s", i, got.Tag(), want.Tag())
		}
	}

	if _, err := ReadEnvelope(&buf); err != io.EOF {
		t.Errorf("ReadEnvelope() at end error = %v, want io.EOF", err)
	}
	if _, err := ReadEnvelope(bytes.NewReader([]byte{0x00, 0x01, 0x00, 0x05, 0x01})); err != io.ErrUnexpectedEOF {
		t.Errorf("ReadEnvelope(short body) error = %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestCodecCompression(t *testing.T) {
	c := NewCodec(WithCompression(64))

	big := &LobbyUpdates{
		Players:      []Player{},
		Enemies:      make([]EnemyModel, 200),
		BossOrbs:     []BossOrbModel{},
		RecentDeaths: []uint32{},
	}
	for i := range big.Enemies {
		big.Enemies[i] = EnemyModel{ID: uint32(i), Hp: 100}
	}

	data, err := c.Encode(big)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if !Flags(data[2]).Has(FlagCompressed) {
		t.Fatal("large body was not compressed")
	}
	plain, _ := Encode(big)
	if len(data) >= len(plain) {
		t.Errorf("compressed size %d >= plain size %d", len(data), len(plain))
	}

	// Any codec can read a compressed envelope.
	for name, dec := range map[string]*Codec{"same": c, "default": DefaultCodec} {
		got, err := dec.Decode(data)
		if err != nil {
			t.Fatalf("%s: Decode() error = %v", name, err)
		}
		if n := len(got.(*LobbyUpdates).Enemies); n != 200 {
			t.Errorf("%s: decoded %d enemies, want 200", name, n)
		}
	}

	small, err := c.Encode(&PlayerDied{PlayerID: 1})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if Flags(small[2]).Has(FlagCompressed) {
		t.Error("body below threshold was compressed")
	}

	again, _ := c.Encode(big)
	if !bytes.Equal(data, again) {
		t.Error("compressed encoding is not deterministic")
	}
}

func TestTagString(t *testing.T) {
	if got := TagGrantChestOpen.String(); got != "GrantChestOpen" {
		t.Errorf("String() = %q, want GrantChestOpen", got)
	}
	if got := Tag(65000).String(); got != "Tag(65000)" {
		t.Errorf("String() = %q, want Tag(65000)", got)
	}
	if got := Name(&StormStopped{}); got != "StormStopped" {
		t.Errorf("Name() = %q, want StormStopped", got)
	}
}
