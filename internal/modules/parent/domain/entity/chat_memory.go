package entity

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// ChatMemory is a row of the conversation memory table written by the RAG
// service. Key is "<student name>_<session suffix>", Timestamp is in nanoseconds.
type ChatMemory struct {
	Id        int64          `gorm:"column:id;primaryKey;autoIncrement"`
	Key       string         `gorm:"column:key;type:varchar(255);index;not null"`
	Timestamp int64          `gorm:"column:timestamp;index;not null"`
	Role      string         `gorm:"column:role;type:varchar(20);not null"`
	Data      datatypes.JSON `gorm:"column:data"`
}

func (ChatMemory) TableName() string {
	return "chat_memory"
}

type memoryBlock struct {
	BlockType string `json:"block_type"`
	Text      string `json:"text"`
}

type memoryData struct {
	Blocks []memoryBlock `json:"blocks"`
}

// Text returns the first text block of Data, or "" when there is none or the
// payload does not parse.
func (m *ChatMemory) Text() string {
	if len(m.Data) == 0 {
		return ""
	}
	var d memoryData
	if err := json.Unmarshal(m.Data, &d); err != nil {
		return ""
	}
	for _, b := range d.Blocks {
		if b.BlockType == "text" {
			return b.Text
		}
	}
	return ""
}

func (m *ChatMemory) Time() time.Time {
	return time.Unix(0, m.Timestamp)
}

// NewTextData builds a Data payload holding a single text block.
func NewTextData(text string) datatypes.JSON {
	raw, _ := json.Marshal(memoryData{Blocks: []memoryBlock{{BlockType: "text", Text: text}}})
	return datatypes.JSON(raw)
}
