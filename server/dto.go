package server

import "github.com/corvid-labs/corvid/blog"

type ChatRequest struct {
	Message     string `json:"message"`
	BlogID      string `json:"blog_id,omitempty"`
	PageURL     string `json:"page_url,omitempty"`
	PageContent string `json:"page_content,omitempty"`
}

type ChatResponse struct {
	Response string `json:"response"`
}

type BlogRequest struct {
	Title         string   `json:"title"`
	Content       string   `json:"content"`
	Excerpt       string   `json:"excerpt"`
	Author        string   `json:"author"`
	Category      string   `json:"category"`
	Tags          []string `json:"tags"`
	FeaturedImage string   `json:"featured_image"`
	ReadTime      string   `json:"read_time"`
	Status        string   `json:"status"`
}

func (r BlogRequest) toBlog() blog.Blog {
	return blog.Blog{
		Title:         r.Title,
		Content:       r.Content,
		Excerpt:       r.Excerpt,
		Author:        r.Author,
		Category:      r.Category,
		Tags:          r.Tags,
		FeaturedImage: r.FeaturedImage,
		ReadTime:      r.ReadTime,
		Status:        blog.Status(r.Status),
	}
}

type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

type ReindexResponse struct {
	Status          string `json:"status"`
	ChunksProcessed int    `json:"chunks_processed"`
	DroppedChunks   []int  `json:"dropped_chunks,omitempty"`
}

type StatusResponse struct {
	Status    string            `json:"status"`
	Assistant bool              `json:"assistant_available"`
	Services  map[string]string `json:"services"`
}
