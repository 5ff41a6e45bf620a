// Package wav - 16 bit PCM RIFF/WAVE reader and writer
package wav

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/tonecfg/tonecfg/pkg/pcm"
)

const FourCC = "RIFF"

const formatPCM = 1

var ErrUnsupported = errors.New("wav: unsupported format")

type Format struct {
	SampleRate    uint32
	Channels      uint16
	BitsPerSample uint16
}

// Header for 16 bit PCM, dataSize 0xFFFFFFFF can be used for endless streams
func Header(sampleRate uint32, channels uint16, dataSize uint32) []byte {
	if channels == 0 {
		channels = 1
	}

	riffSize := dataSize
	if dataSize != 0xFFFFFFFF {
		riffSize = 36 + dataSize
	}

	b := make([]byte, 0, 44)
	b = append(b, FourCC...)
	b = binary.LittleEndian.AppendUint32(b, riffSize)
	b = append(b, "WAVEfmt "...)

	b = binary.LittleEndian.AppendUint32(b, 16)
	b = binary.LittleEndian.AppendUint16(b, formatPCM)
	b = binary.LittleEndian.AppendUint16(b, channels)
	b = binary.LittleEndian.AppendUint32(b, sampleRate)
	b = binary.LittleEndian.AppendUint32(b, sampleRate*uint32(channels)*2) // byte rate
	b = binary.LittleEndian.AppendUint16(b, channels*2)                    // block align
	b = binary.LittleEndian.AppendUint16(b, 16)

	b = append(b, "data"...)
	b = binary.LittleEndian.AppendUint32(b, dataSize)

	return b
}

// Write mono samples as a complete file
func Write(w io.Writer, sampleRate int, samples []int16) error {
	data := pcm.LittleEndian(samples)
	if _, err := w.Write(Header(uint32(sampleRate), 1, uint32(len(data)))); err != nil {
		return err
	}
	_, err := w.Write(data)
	return err
}

// MaxChunkSize limits chunks other than data, fmt and LIST are a few bytes
const MaxChunkSize = 1 << 20

type Audio struct {
	Format
	Samples []int16 // interleaved if Channels > 1
}

// Read whole file, only 16 bit PCM is supported
func Read(r io.Reader) (*Audio, error) {
	// https://en.wikipedia.org/wiki/WAV
	// https://www.mmsp.ece.mcgill.ca/Documents/AudioFormats/WAVE/WAVE.html
	rd := bufio.NewReader(r)

	format, size, err := ReadHeader(rd)
	if err != nil {
		return nil, err
	}

	// size is untrusted, the buffer grows with the bytes that really come.
	// Short data means the recorder was stopped before it could write the tail.
	var data []byte
	if size == 0xFFFFFFFF || size == 0 {
		// stream from a recorder, size is unknown
		data, err = io.ReadAll(rd)
	} else {
		data, err = io.ReadAll(io.LimitReader(rd, int64(size)))
	}
	if err != nil {
		return nil, err
	}

	return &Audio{Format: *format, Samples: pcm.FromLittleEndian(data)}, nil
}

// ReadHeader reads chunks up to the data chunk and returns its size
func ReadHeader(r io.Reader) (*Format, uint32, error) {
	b := make([]byte, 12)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, 0, err
	}

	if string(b[:4]) != FourCC || string(b[8:]) != "WAVE" {
		return nil, 0, errors.New("wav: not a RIFF/WAVE file")
	}

	var format *Format

	for {
		chunkID, size, data, err := readChunk(r)
		if err != nil {
			return nil, 0, err
		}

		if chunkID == "data" {
			if format == nil {
				return nil, 0, errors.New("wav: data before fmt chunk")
			}
			return format, size, nil
		}

		if chunkID == "fmt " {
			if len(data) < 16 {
				return nil, 0, errors.New("wav: short fmt chunk")
			}

			// https://audiocoding.cc/articles/2008-05-22-wav-file-structure/wav_formats.txt
			if tag := binary.LittleEndian.Uint16(data); tag != formatPCM {
				return nil, 0, fmt.Errorf("%w: format tag %d", ErrUnsupported, tag)
			}

			format = &Format{
				Channels:      binary.LittleEndian.Uint16(data[2:]),
				SampleRate:    binary.LittleEndian.Uint32(data[4:]),
				BitsPerSample: binary.LittleEndian.Uint16(data[14:]),
			}

			if format.BitsPerSample != 16 {
				return nil, 0, fmt.Errorf("%w: %d bits per sample", ErrUnsupported, format.BitsPerSample)
			}
			if format.Channels == 0 || format.SampleRate == 0 {
				return nil, 0, fmt.Errorf("%w: %d channels, %d Hz", ErrUnsupported, format.Channels, format.SampleRate)
			}
		}
	}
}

func readChunk(r io.Reader) (chunkID string, size uint32, data []byte, err error) {
	b := make([]byte, 8)
	if _, err = io.ReadFull(r, b); err != nil {
		return
	}

	chunkID = string(b[:4])
	size = binary.LittleEndian.Uint32(b[4:])

	if chunkID != "data" {
		if size > MaxChunkSize {
			err = fmt.Errorf("%w: %q chunk of %d bytes", ErrUnsupported, chunkID, size)
			return
		}
		// chunks are word aligned
		data = make([]byte, size+size&1)
		_, err = io.ReadFull(r, data)
		data = data[:size]
	}

	return
}
