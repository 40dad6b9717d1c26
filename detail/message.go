package detail

type DetailMsg interface {
	isDetailMsg()
}

func (SizeMsg) isDetailMsg() {}

type SizeMsg struct {
	Width  int
	Height int
}
