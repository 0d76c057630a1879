package figures

// DocumentImage is one image extracted from an ingested document.
// Rows are created during ingestion and are read-only here. The caption
// usually embeds a human-style "Figure N" label, which is the primary
// join key for reference resolution.
type DocumentImage struct {
	ID         int    `json:"id"`
	DocumentID string `json:"document_id"`
	ImagePath  string `json:"image_path"`
	AltText    string `json:"alt_text"`
	Caption    string `json:"caption"`
	PageNumber int    `json:"page_number,omitempty"`
}

// ImageReference is a citation attached to a chat answer. A reference
// list never contains two entries with the same ID.
type ImageReference struct {
	Type      string `json:"type"`
	ID        int    `json:"id"`
	ImagePath string `json:"imagePath"`
	Caption   string `json:"caption"`
}

func referenceFor(img DocumentImage) ImageReference {
	return ImageReference{
		Type:      "image",
		ID:        img.ID,
		ImagePath: img.ImagePath,
		Caption:   img.Caption,
	}
}
