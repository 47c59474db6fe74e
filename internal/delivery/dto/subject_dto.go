package dto

type CreateSubjectRequest struct {
	Title string `json:"title" validate:"required,max=255"`
}

type SubjectResponse struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

type SubjectListResponse struct {
	Subjects []SubjectResponse `json:"subjects"`
	Total    int               `json:"total"`
}
