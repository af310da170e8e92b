package model

// Listing is one market entry. IDs are small dense integers per group and
// get reassigned when a listing leaves the board, so displayed numbers stay
// contiguous.
type Listing struct {
	ID       int
	SellerID string
	Length   int64
	Hardness int
	Price    int64
	ListedAt int64
}
