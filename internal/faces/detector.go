// Package faces wraps the external face-detection service. Only the boolean
// face-present signal and the raw bounding boxes are consumed downstream;
// the detector model itself is an external collaborator.
package faces

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/stylemirror/stylemirror/internal/ai"
)

const defaultDetectorURL = "http://localhost:8500"

// Box is one detected face bounding box in pixel coordinates.
type Box struct {
	X1    float64 `json:"x1"`
	Y1    float64 `json:"y1"`
	X2    float64 `json:"x2"`
	Y2    float64 `json:"y2"`
	Score float64 `json:"score"`
}

// detectResponse is the detection server's wire format.
type detectResponse struct {
	FacesCount int `json:"faces_count"`
	Faces      []struct {
		BBox     []float64 `json:"bbox"` // [x1, y1, x2, y2]
		DetScore float64   `json:"det_score"`
	} `json:"faces"`
}

// Detector calls the face-detection server for single frames.
type Detector struct {
	baseURL string
	client  *http.Client
}

// NewDetector creates a detection client. An empty baseURL falls back to the
// local development default.
func NewDetector(baseURL string) *Detector {
	if baseURL == "" {
		baseURL = defaultDetectorURL
	}
	return &Detector{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{},
	}
}

// Detect posts one frame and returns the detected face boxes. Zero boxes
// with a nil error means the frame genuinely contains no face.
func (d *Detector) Detect(ctx context.Context, frame []byte) ([]Box, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="frame.jpg"`)
	h.Set("Content-Type", ai.DetectMIMEType(frame))
	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(frame); err != nil {
		return nil, fmt.Errorf("failed to write frame data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/detect/face", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var parsed detectResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	boxes := make([]Box, 0, len(parsed.Faces))
	for _, f := range parsed.Faces {
		if len(f.BBox) != 4 {
			continue
		}
		boxes = append(boxes, Box{
			X1:    f.BBox[0],
			Y1:    f.BBox[1],
			X2:    f.BBox[2],
			Y2:    f.BBox[3],
			Score: f.DetScore,
		})
	}
	return boxes, nil
}
