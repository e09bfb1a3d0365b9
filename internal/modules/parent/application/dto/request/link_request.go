package request

type LinkRequest struct {
	ParentId  string `json:"parentId" binding:"required"`
	StudentId string `json:"studentId" binding:"required"`
}
