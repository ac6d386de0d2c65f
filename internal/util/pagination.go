package util

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Normalize clamps page to >= 1 and size to [1, MaxPageSize].
func Normalize(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return page, size
}

func Calculate(page, size int) (offset, limit int) {
	page, size = Normalize(page, size)
	return (page - 1) * size, size
}

func TotalPages(total int64, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}
