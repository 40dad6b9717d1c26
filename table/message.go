package table

type TableMsg interface {
	isTableMsg()
}

func (SizeMsg) isTableMsg() {}

type SizeMsg struct {
	Width  int
	Height int
}
