package types

// FrameData is a captured frame as handed to callers. Data holds a data URL
// (data:image/<format>;base64,...) unless the frame was written to FilePath.
// Empty frames carry no image data.
type FrameData struct {
	Display  int    `json:"display"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Format   string `json:"format"`
	Data     string `json:"data,omitempty"`
	FilePath string `json:"filePath,omitempty"`
}

// SelectionData describes a started region selection session.
type SelectionData struct {
	SessionID string `json:"sessionId"`
	Display   int    `json:"display"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Preview   string `json:"preview"`
}

// PreviewData is the preview of the currently held selection session.
type PreviewData struct {
	SessionID string `json:"sessionId"`
	Preview   string `json:"preview"`
}
