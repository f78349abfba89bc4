package category

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Dto struct {
	Name string `json:"name" binding:"required,min=1,max=50"`
}
