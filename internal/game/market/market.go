package market

import (
	"sort"

	"growarena.gg/internal/game/economy"
	"growarena.gg/internal/game/model"
	"growarena.gg/internal/game/state"
	"growarena.gg/internal/game/tuning"
	"growarena.gg/internal/protocol"
)

// Per-group stat market. Listing moves the seller's length (and hardness)
// onto the board; it returns by delist, converts to coins by sale, or cashes
// out directly by recycle. Listing ids stay dense: removals renumber.

// List puts the seller's entire length up for sale and zeroes it.
func List(d *state.GroupData, sellerID string, price int64, tn tuning.Market, now int64) (*model.Listing, string) {
	u := d.Group.User(sellerID)
	if u == nil {
		return nil, protocol.ErrNotRegistered
	}
	if price <= 0 {
		return nil, protocol.ErrInvalidAmount
	}
	if u.Length < tn.MinListLength {
		return nil, protocol.ErrInvalidAmount
	}
	l := &model.Listing{
		ID:       d.NextListingID,
		SellerID: sellerID,
		Length:   u.Length,
		Hardness: u.Hardness,
		Price:    price,
		ListedAt: now,
	}
	d.NextListingID++
	d.Listings = append(d.Listings, l)
	u.Length = 0
	u.Hardness = model.MinHardness
	d.TouchGroups()
	d.TouchEffects()
	return l, ""
}

// Delist removes the seller's own listing and restores exactly the listed
// stats.
func Delist(d *state.GroupData, sellerID string, listingID int) string {
	l := find(d, listingID)
	if l == nil || l.SellerID != sellerID {
		return protocol.ErrInvalidTarget
	}
	u := d.Group.User(sellerID)
	if u == nil {
		return protocol.ErrNotRegistered
	}
	u.Length = l.Length
	u.Hardness = model.ClampHardness(l.Hardness)
	remove(d, listingID)
	d.TouchGroups()
	d.TouchEffects()
	return ""
}

type BuyResult struct {
	Length     int64
	Price      int64
	SellerNet  int64
	SellerTax  int64
}

// Buy transfers the listing's length to the buyer and the taxed price to the
// seller, all in one mutation.
func Buy(d *state.GroupData, buyerID string, listingID int, brackets []tuning.TaxBracket) (BuyResult, string) {
	var res BuyResult
	l := find(d, listingID)
	if l == nil {
		return res, protocol.ErrInvalidTarget
	}
	if l.SellerID == buyerID {
		return res, protocol.ErrSelfTarget
	}
	buyer := d.Group.User(buyerID)
	if buyer == nil {
		return res, protocol.ErrNotRegistered
	}
	seller := d.Group.User(l.SellerID)
	if seller == nil {
		return res, protocol.ErrInvalidTarget
	}
	if buyer.Coins < l.Price {
		return res, protocol.ErrInsufficientFunds
	}

	buyer.Coins -= l.Price
	net, tax := economy.Process(d.Group, brackets, l.Price)
	seller.Coins += net
	buyer.Length += l.Length
	if l.Hardness > buyer.Hardness {
		buyer.Hardness = model.ClampHardness(l.Hardness)
	}
	remove(d, l.ID)
	d.TouchGroups()
	d.TouchEffects()
	return BuyResult{Length: l.Length, Price: l.Price, SellerNet: net, SellerTax: tax}, ""
}

type RecycleResult struct {
	Length int64
	Gross  int64
	Net    int64
	Tax    int64
}

// Recycle cashes the user's length out directly: ceil(length/divisor) coins
// through the tax pipeline, no listing created.
func Recycle(d *state.GroupData, userID string, tn tuning.Market, brackets []tuning.TaxBracket) (RecycleResult, string) {
	var res RecycleResult
	u := d.Group.User(userID)
	if u == nil {
		return res, protocol.ErrNotRegistered
	}
	if u.Length < 1 {
		return res, protocol.ErrInvalidAmount
	}
	res.Length = u.Length
	res.Gross = (u.Length + tn.RecycleDivisor - 1) / tn.RecycleDivisor
	res.Net, res.Tax = economy.Process(d.Group, brackets, res.Gross)
	u.Coins += res.Net
	u.Length = 0
	u.Hardness = model.MinHardness
	d.TouchGroups()
	return res, ""
}

// Board returns the listings ordered by id.
func Board(d *state.GroupData) []*model.Listing {
	out := append([]*model.Listing(nil), d.Listings...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func find(d *state.GroupData, id int) *model.Listing {
	for _, l := range d.Listings {
		if l.ID == id {
			return l
		}
	}
	return nil
}

// remove drops the listing and renumbers the rest so ids stay 1..n.
func remove(d *state.GroupData, id int) {
	out := d.Listings[:0]
	for _, l := range d.Listings {
		if l.ID != id {
			out = append(out, l)
		}
	}
	d.Listings = out
	sort.Slice(d.Listings, func(i, j int) bool { return d.Listings[i].ID < d.Listings[j].ID })
	for i, l := range d.Listings {
		l.ID = i + 1
	}
	d.NextListingID = len(d.Listings) + 1
}
