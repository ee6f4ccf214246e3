package store

import (
	"bytes"
	"encoding/binary"
	"encoding/xml"
	"fmt"
	"image"
	"image/png"
	"io"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// iconSizes are the resolutions rendered into rasterized favicon output.
var iconSizes = []int{16, 32, 48}

// svgForbiddenElements are stripped wholesale, children included.
var svgForbiddenElements = map[string]bool{
	"script":        true,
	"foreignobject": true,
}

// dangerousSchemes in href/src attribute values turn an image into a script carrier.
var dangerousSchemes = []string{"javascript:", "vbscript:", "data:text"}

// SanitizeSVG removes script elements, event-handler attributes, and dangerous URL schemes
// from an SVG document, returning the cleaned markup. The XML decoder is used rather than
// the HTML tokenizer because SVG is case-sensitive and the HTML tokenizer folds names to
// lower case.
func SanitizeSVG(data []byte) ([]byte, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Entity = xml.HTMLEntity

	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)

	skipDepth := 0
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse SVG: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if skipDepth > 0 {
				skipDepth++
				continue
			}
			if svgForbiddenElements[strings.ToLower(t.Name.Local)] {
				skipDepth = 1
				continue
			}
			t.Attr = sanitizeAttrs(t.Attr)
			if err := enc.EncodeToken(t); err != nil {
				return nil, fmt.Errorf("failed to encode SVG token: %w", err)
			}

		case xml.EndElement:
			if skipDepth > 0 {
				skipDepth--
				continue
			}
			if err := enc.EncodeToken(t); err != nil {
				return nil, fmt.Errorf("failed to encode SVG token: %w", err)
			}

		default:
			if skipDepth > 0 {
				continue
			}
			if err := enc.EncodeToken(tok); err != nil {
				return nil, fmt.Errorf("failed to encode SVG token: %w", err)
			}
		}
	}

	if err := enc.Flush(); err != nil {
		return nil, fmt.Errorf("failed to flush SVG encoder: %w", err)
	}

	return buf.Bytes(), nil
}

// sanitizeAttrs drops event handlers and dangerous URL schemes from an element's attributes.
func sanitizeAttrs(attrs []xml.Attr) []xml.Attr {
	out := attrs[:0]
	for _, a := range attrs {
		name := strings.ToLower(a.Name.Local)
		if strings.HasPrefix(name, "on") {
			continue
		}
		if name == "href" || name == "src" {
			value := strings.ToLower(strings.TrimSpace(a.Value))
			dangerous := false
			for _, scheme := range dangerousSchemes {
				if strings.HasPrefix(value, scheme) {
					dangerous = true
					break
				}
			}
			if dangerous {
				continue
			}
		}
		out = append(out, a)
	}
	return out
}

// RasterizeSVG renders an SVG into a multi-resolution ICO container with PNG-compressed
// entries at the standard favicon sizes.
func RasterizeSVG(svgData []byte) ([]byte, error) {
	entries := make([][]byte, 0, len(iconSizes))

	for _, size := range iconSizes {
		// SetTarget mutates the icon; parse a fresh copy per size.
		icon, err := oksvg.ReadIconStream(bytes.NewReader(svgData))
		if err != nil {
			return nil, fmt.Errorf("failed to parse SVG for rasterization: %w", err)
		}

		icon.SetTarget(0, 0, float64(size), float64(size))
		img := image.NewRGBA(image.Rect(0, 0, size, size))
		scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
		icon.Draw(rasterx.NewDasher(size, size, scanner), 1.0)

		var pngBuf bytes.Buffer
		if err := png.Encode(&pngBuf, img); err != nil {
			return nil, fmt.Errorf("failed to encode rasterized frame: %w", err)
		}
		entries = append(entries, pngBuf.Bytes())
	}

	return encodeICO(entries, iconSizes), nil
}

// encodeICO assembles PNG-compressed frames into an ICO container: a 6-byte ICONDIR,
// one 16-byte ICONDIRENTRY per frame, then the frame payloads.
func encodeICO(frames [][]byte, sizes []int) []byte {
	var buf bytes.Buffer

	binary.Write(&buf, binary.LittleEndian, uint16(0)) // reserved
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // type: icon
	binary.Write(&buf, binary.LittleEndian, uint16(len(frames)))

	offset := 6 + 16*len(frames)
	for i, frame := range frames {
		buf.WriteByte(byte(sizes[i])) // width; 0 would mean 256
		buf.WriteByte(byte(sizes[i])) // height
		buf.WriteByte(0)              // palette size
		buf.WriteByte(0)              // reserved
		binary.Write(&buf, binary.LittleEndian, uint16(1))          // color planes
		binary.Write(&buf, binary.LittleEndian, uint16(32))         // bits per pixel
		binary.Write(&buf, binary.LittleEndian, uint32(len(frame))) // payload size
		binary.Write(&buf, binary.LittleEndian, uint32(offset))
		offset += len(frame)
	}

	for _, frame := range frames {
		buf.Write(frame)
	}

	return buf.Bytes()
}
