package utils

const pageDefault = 1
const limitDefault = 10
const limitMax = 100

// GetPageParams normalizes the page and limit values of a listing request.
// If page or limit are nil or out of range, default values are used. The
// limit is capped at a maximum value.
func GetPageParams(page *int, limit *int) (int, int) {
	finalPage := pageDefault
	finalLimit := limitDefault

	if page != nil && *page >= 1 {
		finalPage = *page
	}

	if limit != nil && *limit >= 1 {
		finalLimit = min(*limit, limitMax)
	}

	return finalPage, finalLimit
}

// PageWindow converts a 1-based page into the zero-indexed skip and the
// number of items the page can still serve given the size of the full set.
func PageWindow(page, limit, total int) (skip, count int) {
	skip = (page - 1) * limit
	count = total - skip
	if count < 0 {
		count = 0
	}
	if count > limit {
		count = limit
	}
	return skip, count
}

// TotalPages returns the number of pages needed to cover total items at the
// given page size.
func TotalPages(total, limit int) int {
	if limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
