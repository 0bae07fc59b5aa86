package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const timestampLayout = "2006-01-02T15-04-05Z"

// Manifest describes one published heatmap
type Manifest struct {
	RenderID   string `json:"renderId"`
	RenderedAt string `json:"renderedAt"`
	Key        string `json:"key"`
	Series     string `json:"series,omitempty"`
	Years      []int  `json:"years"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Size       int    `json:"size"`
	Checksum   string `json:"checksum"`
}

// NewManifest fills in the identity and checksum of an image
func NewManifest(image []byte, years []int, width, height int) Manifest {
	return Manifest{
		RenderID:   uuid.New().String(),
		RenderedAt: GenerateTimestamp(),
		Years:      years,
		Width:      width,
		Height:     height,
		Size:       len(image),
		Checksum:   Checksum(image),
	}
}

// Marshal encodes the manifest as indented JSON
func (m Manifest) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal manifest: %w", err)
	}
	return data, nil
}

// ParseManifest decodes a manifest
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return &m, nil
}

// Checksum is the hex SHA256 of data
func Checksum(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// GenerateTimestamp generates a timestamp usable in object keys
func GenerateTimestamp() string {
	return time.Now().UTC().Format(timestampLayout)
}

// ParseTimestamp parses a timestamp made by GenerateTimestamp
func ParseTimestamp(ts string) (time.Time, error) {
	return time.Parse(timestampLayout, ts)
}
