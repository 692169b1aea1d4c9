package prodcrawl

// Product is one discovered product page.
type Product struct {
	ProductName string `json:"productName"`
	URL         string `json:"url"`
}

// Report is the output artifact of a crawl. The same shape is written
// twice: once pre-deduplication ("raw") and once post-deduplication
// ("final"). Products appear in the order their nodes completed.
type Report struct {
	Products       []Product `json:"products"`
	PagesProcessed int       `json:"pages_processed"`
	TotalNodes     int       `json:"total_nodes"`
	BaseURL        string    `json:"base_url"`
	Domain         string    `json:"domain"`
}
