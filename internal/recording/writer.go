package recording

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Fragoler/simple-tactics-client/pkg/logger"
	"github.com/pkg/errors"
)

const (
	MagicHeader string = `TCRC` // 4 байта
	Version1    uint32 = 1

	maxTypeLen    = 255
	maxTokenLen   = 255
	maxPayloadLen = 1 << 24
)

// FileHeader - точное представление заголовка файла.
// binary.Write пишет его целиком: только массивы и числа.
type FileHeader struct {
	Magic        [4]byte // 4
	Version      uint32  // 4
	StartedAt    int64   // 8, unix ms
	MessageCount int32   // 4
	TokenLen     uint8   // 1
}

// MessageHeader - заголовок каждой записи.
type MessageHeader struct {
	OffsetMs   int64  // 8
	TypeLen    uint8  // 1
	PayloadLen uint32 // 4
}

// Service складывает записи в каталог.
type Service struct {
	SaveDir string
}

func NewService(dir string) (*Service, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create %s", dir)
	}
	return &Service{SaveDir: dir}, nil
}

// Save пишет запись в файл вида session_<token>_<unix>.tcrec и возвращает путь.
func (s *Service) Save(rec *Recording) (string, error) {
	filename := fmt.Sprintf("session_%s_%d.tcrec", safeName(rec.GameToken), rec.StartedAt.Unix())
	path := filepath.Join(s.SaveDir, filename)

	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(err, "create recording")
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := Write(w, rec); err != nil {
		return "", err
	}
	if err := w.Flush(); err != nil {
		return "", errors.Wrap(err, "flush recording")
	}

	logger.Component("recording").WithField("path", path).WithField("messages", len(rec.Messages)).Info("Запись сохранена")
	return path, nil
}

func Write(w io.Writer, rec *Recording) error {
	token := []byte(rec.GameToken)
	if len(token) > maxTokenLen {
		return errors.Errorf("game token too long: %d", len(token))
	}

	// 1. Глобальный заголовок
	header := FileHeader{
		Version:      Version1,
		StartedAt:    rec.StartedAt.UnixMilli(),
		MessageCount: int32(len(rec.Messages)),
		TokenLen:     uint8(len(token)),
	}
	copy(header.Magic[:], MagicHeader)

	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return errors.Wrap(err, "failed to write header")
	}
	if _, err := w.Write(token); err != nil {
		return errors.Wrap(err, "failed to write token")
	}

	// 2. Сообщения
	for i, m := range rec.Messages {
		typ := []byte(m.Type)
		if len(typ) > maxTypeLen {
			return errors.Errorf("message %d: type too long: %d", i, len(typ))
		}
		if len(m.Payload) > maxPayloadLen {
			return errors.Errorf("message %d: payload too long: %d", i, len(m.Payload))
		}

		mh := MessageHeader{
			OffsetMs:   m.Offset.Milliseconds(),
			TypeLen:    uint8(len(typ)),
			PayloadLen: uint32(len(m.Payload)),
		}
		if err := binary.Write(w, binary.LittleEndian, &mh); err != nil {
			return errors.Wrapf(err, "message %d header", i)
		}
		if _, err := w.Write(typ); err != nil {
			return errors.Wrapf(err, "message %d type", i)
		}
		if len(m.Payload) > 0 {
			if _, err := w.Write(m.Payload); err != nil {
				return errors.Wrapf(err, "message %d payload", i)
			}
		}
	}

	return nil
}

// safeName оставляет в имени файла только буквы, цифры, '-' и '_'.
func safeName(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return "game"
	}
	return string(out)
}
