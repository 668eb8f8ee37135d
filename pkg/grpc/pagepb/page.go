package pagepb

import "mangapages/pkg/models"

type GetPageRequest struct {
	Id string `json:"id"`
}

func (r *GetPageRequest) GetId() string {
	if r == nil {
		return ""
	}
	return r.Id
}

type SavePageRequest struct {
	Id       string           `json:"id"`
	Document *models.Document `json:"document"`
}

func (r *SavePageRequest) GetId() string {
	if r == nil {
		return ""
	}
	return r.Id
}

func (r *SavePageRequest) GetDocument() *models.Document {
	if r == nil {
		return nil
	}
	return r.Document
}

type AnalyzePageRequest struct {
	Id string `json:"id"`
}

func (r *AnalyzePageRequest) GetId() string {
	if r == nil {
		return ""
	}
	return r.Id
}

type PageResponse struct {
	Document *models.Document `json:"document"`
}

func (r *PageResponse) GetDocument() *models.Document {
	if r == nil {
		return nil
	}
	return r.Document
}
