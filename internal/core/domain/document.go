package domain

import "time"

type DocumentStatus string

const (
	StatusUploaded   DocumentStatus = "uploaded"
	StatusProcessing DocumentStatus = "processing"
	StatusProcessed  DocumentStatus = "processed"
	StatusFailed     DocumentStatus = "failed"
)

// Terminal reports whether the processing pipeline is done with the
// document, successfully or not.
func (s DocumentStatus) Terminal() bool {
	return s == StatusProcessed || s == StatusFailed
}

type FileType string

const (
	FileTypePDF  FileType = "pdf"
	FileTypeDOCX FileType = "docx"
	FileTypeTXT  FileType = "txt"
	FileTypeMD   FileType = "md"
)

func ParseFileType(v string) (FileType, bool) {
	switch FileType(v) {
	case FileTypePDF, FileTypeDOCX, FileTypeTXT, FileTypeMD:
		return FileType(v), true
	}
	return "", false
}

type DifficultyLevel string

const (
	DifficultyBeginner     DifficultyLevel = "beginner"
	DifficultyIntermediate DifficultyLevel = "intermediate"
	DifficultyAdvanced     DifficultyLevel = "advanced"
)

type Document struct {
	ID               string          `json:"id"`
	UserID           string          `json:"user_id"`
	Filename         string          `json:"filename"`
	OriginalFilename string          `json:"original_filename"`
	StoragePath      string          `json:"storage_path"`
	FileType         FileType        `json:"file_type"`
	FileSize         int64           `json:"file_size"`
	Status           DocumentStatus  `json:"status"`
	Error            string          `json:"error,omitempty"`
	ExtractedText    string          `json:"-"`
	KeyConcepts      []string        `json:"key_concepts,omitempty"`
	LearningGoals    []string        `json:"learning_objectives,omitempty"`
	Difficulty       DifficultyLevel `json:"difficulty_level,omitempty"`
	ReadingMinutes   int             `json:"estimated_reading_time,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// ContentAnalysis is the worker's output for one document.
type ContentAnalysis struct {
	CleanedText    string
	Chunks         []Chunk
	KeyConcepts    []string
	LearningGoals  []string
	Difficulty     DifficultyLevel
	ReadingMinutes int
}

type Chunk struct {
	Index    int      `json:"index"`
	Content  string   `json:"content"`
	Concepts []string `json:"concepts,omitempty"`
}
