package dto

type PromptOutput struct {
	ID     string
	Title  string
	Body   string
	Tags   []string
	Origin string
	Path   string
}

type AddPromptInput struct {
	Title string
	Body  string
	Tags  []string
}
