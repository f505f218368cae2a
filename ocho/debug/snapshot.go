package debug

import (
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/valerio/go-ocho/ocho/display"
	"github.com/valerio/go-ocho/ocho/video"
)

// TakeSnapshot handles the snapshot key for backends, saving to the working directory.
func TakeSnapshot(frame *video.FrameBuffer) {
	if frame == nil {
		slog.Warn("No frame data available for snapshot")
		return
	}

	if _, err := SaveFramePNGToDir(frame, "ocho_snapshot", ""); err != nil {
		slog.Error("Failed to save snapshot", "error", err)
	}
}

// FrameImage converts the framebuffer to an RGBA image, one image pixel per cell.
func FrameImage(frame *video.FrameBuffer) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, video.FramebufferWidth, video.FramebufferHeight))

	for y := 0; y < video.FramebufferHeight; y++ {
		for x := 0; x < video.FramebufferWidth; x++ {
			color := uint32(frame.ColorAt(uint(x), uint(y)))
			idx := img.PixOffset(x, y)
			img.Pix[idx] = byte(color >> display.RGBARShift & display.RGBAColorMask)
			img.Pix[idx+1] = byte(color >> display.RGBAGShift & display.RGBAColorMask)
			img.Pix[idx+2] = byte(color >> display.RGBABShift & display.RGBAColorMask)
			img.Pix[idx+3] = byte(color >> display.RGBAAShift & display.RGBAColorMask)
		}
	}

	return img
}

// SaveFramePNGToDir saves a framebuffer as PNG with timestamp to a specific
// directory, the working directory if empty. Returns the written path.
func SaveFramePNGToDir(frame *video.FrameBuffer, baseName, directory string) (string, error) {
	img := FrameImage(frame)

	timestamp := time.Now().Format("20060102_150405.000")
	filename := fmt.Sprintf("%s_%s.png", baseName, timestamp)

	outputDir := directory
	if outputDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current directory: %w", err)
		}
		outputDir = cwd
	}

	filePath := filepath.Join(outputDir, filename)
	file, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create file %s: %w", filePath, err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return "", fmt.Errorf("failed to encode PNG: %w", err)
	}

	slog.Info("Snapshot saved", "path", filePath, "size", fmt.Sprintf("%dx%d", video.FramebufferWidth, video.FramebufferHeight), "format", "PNG")
	return filePath, nil
}
