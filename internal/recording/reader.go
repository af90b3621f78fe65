package recording

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/Fragoler/simple-tactics-client/pkg/api"
	"github.com/pkg/errors"
)

var ErrInvalidFile = errors.New("not a recording")

func Load(path string) (*Recording, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open recording")
	}
	defer f.Close()

	return Read(bufio.NewReader(f))
}

func Read(r io.Reader) (*Recording, error) {
	// 1. Заголовок целиком
	var header FileHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, errors.Wrap(err, "failed to read header")
	}

	if string(header.Magic[:]) != MagicHeader {
		return nil, errors.Wrap(ErrInvalidFile, "invalid magic")
	}
	if header.Version != Version1 {
		return nil, errors.Wrapf(ErrInvalidFile, "unsupported version: %d (expected %d)", header.Version, Version1)
	}
	if header.MessageCount < 0 {
		return nil, errors.Wrapf(ErrInvalidFile, "negative message count %d", header.MessageCount)
	}

	token := make([]byte, header.TokenLen)
	if _, err := io.ReadFull(r, token); err != nil {
		return nil, errors.Wrap(err, "failed to read token")
	}

	rec := &Recording{
		GameToken: string(token),
		StartedAt: time.UnixMilli(header.StartedAt),
		Messages:  make([]Message, 0, header.MessageCount),
	}

	// 2. Сообщения
	for i := 0; i < int(header.MessageCount); i++ {
		var mh MessageHeader
		if err := binary.Read(r, binary.LittleEndian, &mh); err != nil {
			return nil, errors.Wrapf(err, "message %d header", i)
		}
		if mh.PayloadLen > maxPayloadLen {
			return nil, errors.Wrapf(ErrInvalidFile, "message %d: payload too long: %d", i, mh.PayloadLen)
		}

		typ := make([]byte, mh.TypeLen)
		if _, err := io.ReadFull(r, typ); err != nil {
			return nil, errors.Wrapf(err, "message %d type", i)
		}

		payload := json.RawMessage{}
		if mh.PayloadLen > 0 {
			payload = make([]byte, mh.PayloadLen)
			if _, err := io.ReadFull(r, payload); err != nil {
				return nil, errors.Wrapf(err, "message %d payload", i)
			}
		}

		rec.Messages = append(rec.Messages, Message{
			Offset:        time.Duration(mh.OffsetMs) * time.Millisecond,
			ServerMessage: api.ServerMessage{Type: string(typ), Payload: payload},
		})
	}

	return rec, nil
}
