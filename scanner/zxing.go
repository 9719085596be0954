package scanner

import (
	"fmt"
	"image"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/common"
	multidetector "github.com/makiuchi-d/gozxing/multi/qrcode/detector"
	"github.com/makiuchi-d/gozxing/qrcode/decoder"
	"github.com/mobile-next/qrscan/utils"
)

// ZXingDetector finds and decodes QR codes with gozxing. Detection uses the
// multi-code detector so several codes in one capture are all reported.
type ZXingDetector struct {
	hints   map[gozxing.DecodeHintType]interface{}
	decoder *decoder.Decoder
}

func NewZXingDetector() *ZXingDetector {
	return &ZXingDetector{
		hints: map[gozxing.DecodeHintType]interface{}{
			gozxing.DecodeHintType_TRY_HARDER: true,
		},
		decoder: decoder.NewDecoder(),
	}
}

// Detect binarizes the image and returns every QR grid the detector locates.
// gozxing signals "nothing here" with an error, which is reported as zero grids.
func (d *ZXingDetector) Detect(img *image.Gray) ([]Grid, error) {
	bmp, err := gozxing.NewBinaryBitmap(gozxing.NewHybridBinarizer(gozxing.NewLuminanceSourceFromImage(img)))
	if err != nil {
		return nil, fmt.Errorf("failed to binarize image: %w", err)
	}

	matrix, err := bmp.GetBlackMatrix()
	if err != nil {
		return nil, fmt.Errorf("failed to build bit matrix: %w", err)
	}

	results, err := multidetector.NewMultiDetector(matrix).DetectMulti(d.hints)
	if err != nil {
		utils.Verbose("No QR grid detected: %v", err)
		return nil, nil
	}

	grids := make([]Grid, 0, len(results))
	for _, result := range results {
		grids = append(grids, Grid{
			Corners: resultCorners(result),
			Payload: result,
		})
	}
	return grids, nil
}

func (d *ZXingDetector) DecodeGrid(grid Grid) (string, error) {
	result, ok := grid.Payload.(*common.DetectorResult)
	if !ok || result == nil {
		return "", fmt.Errorf("grid was not produced by the zxing detector")
	}

	decoded, err := d.decoder.Decode(result.GetBits(), d.hints)
	if err != nil {
		return "", fmt.Errorf("failed to decode grid: %w", err)
	}
	return decoded.GetText(), nil
}

func resultCorners(result *common.DetectorResult) []image.Point {
	points := result.GetPoints()
	corners := make([]image.Point, 0, len(points))
	for _, p := range points {
		if p == nil {
			continue
		}
		corners = append(corners, image.Pt(int(p.GetX()), int(p.GetY())))
	}
	return corners
}
