package state

import (
	"sort"

	"growarena.gg/internal/game/model"
	"growarena.gg/internal/persistence/snapshot"
)

// Conversions between the in-memory model and the durable V1 shapes. Exports
// sort by id so file contents are stable across identical states.

func (s *Store) load() error {
	gv, err := snapshot.ReadGroups(s.groupsPath())
	if err != nil {
		return err
	}
	cv, err := snapshot.ReadCooldowns(s.cooldownsPath())
	if err != nil {
		return err
	}
	ev, err := snapshot.ReadEffects(s.effectsPath())
	if err != nil {
		return err
	}

	for _, g := range gv.Groups {
		gs := newGroupState(g.ID)
		gs.d.Group.Enabled = g.Enabled
		gs.d.Group.TaxEnabled = g.TaxEnabled
		gs.d.Group.Treasury = g.Treasury
		for _, u := range g.Users {
			gs.d.Group.Users[u.ID] = importUser(u)
		}
		s.groups[g.ID] = gs
	}
	for _, cg := range cv.Groups {
		gs := s.ensureLocked(cg.GroupID)
		for _, cu := range cg.Users {
			gs.d.Cooldowns[cu.UserID] = importBook(cu)
		}
	}
	for _, e := range ev.Effects {
		gs := s.ensureLocked(e.GroupID)
		gs.d.Effects[e.ID] = importEffect(e)
	}
	for _, ga := range ev.Giveaways {
		gs := s.ensureLocked(ga.GroupID)
		gs.d.Giveaways[ga.ID] = importGiveaway(ga)
	}
	for _, mb := range ev.Markets {
		gs := s.ensureLocked(mb.GroupID)
		gs.d.NextListingID = mb.NextID
		for _, l := range mb.Listings {
			gs.d.Listings = append(gs.d.Listings, &model.Listing{
				ID: l.ID, SellerID: l.SellerID, Length: l.Length,
				Hardness: l.Hardness, Price: l.Price, ListedAt: l.ListedAt,
			})
		}
	}
	return nil
}

// ensureLocked is load-time only; no concurrent access yet.
func (s *Store) ensureLocked(id string) *groupState {
	gs, ok := s.groups[id]
	if !ok {
		gs = newGroupState(id)
		s.groups[id] = gs
	}
	return gs
}

func (s *Store) snapshotGroups() []*groupState {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.groups))
	for id := range s.groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*groupState, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.groups[id])
	}
	return out
}

func (s *Store) saveGroups() error {
	var out snapshot.GroupsV1
	for _, gs := range s.snapshotGroups() {
		gs.mu.Lock()
		out.Groups = append(out.Groups, exportGroup(gs.d.Group))
		gs.mu.Unlock()
	}
	return snapshot.WriteGroups(s.groupsPath(), out)
}

func (s *Store) saveCooldowns() error {
	var out snapshot.CooldownsV1
	for _, gs := range s.snapshotGroups() {
		gs.mu.Lock()
		cg := snapshot.CooldownGroupV1{GroupID: gs.d.Group.ID}
		uids := make([]string, 0, len(gs.d.Cooldowns))
		for uid := range gs.d.Cooldowns {
			uids = append(uids, uid)
		}
		sort.Strings(uids)
		for _, uid := range uids {
			cg.Users = append(cg.Users, exportBook(uid, gs.d.Cooldowns[uid]))
		}
		gs.mu.Unlock()
		if len(cg.Users) > 0 {
			out.Groups = append(out.Groups, cg)
		}
	}
	return snapshot.WriteCooldowns(s.cooldownsPath(), out)
}

func (s *Store) saveEffects() error {
	var out snapshot.EffectsV1
	for _, gs := range s.snapshotGroups() {
		gs.mu.Lock()
		fids := make([]string, 0, len(gs.d.Effects))
		for id := range gs.d.Effects {
			fids = append(fids, id)
		}
		sort.Strings(fids)
		for _, id := range fids {
			out.Effects = append(out.Effects, exportEffect(gs.d.Effects[id]))
		}
		gids := make([]string, 0, len(gs.d.Giveaways))
		for id := range gs.d.Giveaways {
			gids = append(gids, id)
		}
		sort.Strings(gids)
		for _, id := range gids {
			out.Giveaways = append(out.Giveaways, exportGiveaway(gs.d.Giveaways[id]))
		}
		if len(gs.d.Listings) > 0 || gs.d.NextListingID > 1 {
			mb := snapshot.MarketBookV1{GroupID: gs.d.Group.ID, NextID: gs.d.NextListingID}
			for _, l := range gs.d.Listings {
				mb.Listings = append(mb.Listings, snapshot.ListingV1{
					ID: l.ID, SellerID: l.SellerID, Length: l.Length,
					Hardness: l.Hardness, Price: l.Price, ListedAt: l.ListedAt,
				})
			}
			out.Markets = append(out.Markets, mb)
		}
		gs.mu.Unlock()
	}
	return snapshot.WriteEffects(s.effectsPath(), out)
}

func exportGroup(g *model.GroupRecord) snapshot.GroupV1 {
	out := snapshot.GroupV1{
		ID:         g.ID,
		Enabled:    g.Enabled,
		TaxEnabled: g.TaxEnabled,
		Treasury:   g.Treasury,
	}
	uids := make([]string, 0, len(g.Users))
	for id := range g.Users {
		uids = append(uids, id)
	}
	sort.Strings(uids)
	for _, id := range uids {
		u := g.Users[id]
		out.Users = append(out.Users, snapshot.UserV1{
			ID:       u.ID,
			Nickname: u.Nickname,
			Length:   u.Length,
			Hardness: u.Hardness,
			Coins:    u.Coins,
			LastSign: u.LastSign,

			WinStreak:         u.WinStreak,
			MaxWinStreak:      u.MaxWinStreak,
			TodayMaxWinStreak: u.TodayMaxWinStreak,
			StreakDay:         u.StreakDay,

			Items: snapshot.ItemsV1{
				Viagra:     u.Items.Viagra,
				Pills:      u.Items.Pills,
				Ring:       u.Items.Ring,
				Sterilized: u.Items.Sterilized,
				Exchanger:  u.Items.Exchanger,
				Parasite:   u.Items.Parasite,
				SavedDepth: u.Items.SavedDepth,
			},
			ActiveEffects: append([]string(nil), u.ActiveEffects...),
		})
	}
	return out
}

func importUser(u snapshot.UserV1) *model.UserRecord {
	return &model.UserRecord{
		ID:       u.ID,
		Nickname: u.Nickname,
		Length:   u.Length,
		Hardness: model.ClampHardness(u.Hardness),
		Coins:    u.Coins,
		LastSign: u.LastSign,

		WinStreak:         u.WinStreak,
		MaxWinStreak:      u.MaxWinStreak,
		TodayMaxWinStreak: u.TodayMaxWinStreak,
		StreakDay:         u.StreakDay,

		Items: model.Items{
			Viagra:     u.Items.Viagra,
			Pills:      u.Items.Pills,
			Ring:       u.Items.Ring,
			Sterilized: u.Items.Sterilized,
			Exchanger:  u.Items.Exchanger,
			Parasite:   u.Items.Parasite,
			SavedDepth: u.Items.SavedDepth,
		},
		ActiveEffects: append([]string(nil), u.ActiveEffects...),
	}
}

func exportBook(uid string, b *model.CooldownBook) snapshot.CooldownUserV1 {
	out := snapshot.CooldownUserV1{UserID: uid}
	if len(b.Stamps) > 0 {
		out.Stamps = make(map[string]int64, len(b.Stamps))
		for k, v := range b.Stamps {
			out.Stamps[k] = v
		}
	}
	if len(b.Windows) > 0 {
		out.Windows = make(map[string]snapshot.RateWindowV1, len(b.Windows))
		for k, w := range b.Windows {
			out.Windows[k] = snapshot.RateWindowV1{Start: w.Start, Count: w.Count}
		}
	}
	return out
}

func importBook(cu snapshot.CooldownUserV1) *model.CooldownBook {
	b := model.NewCooldownBook()
	for k, v := range cu.Stamps {
		b.Stamps[k] = v
	}
	for k, w := range cu.Windows {
		b.Windows[k] = model.RateWindow{Start: w.Start, Count: w.Count}
	}
	return b
}

func exportEffect(e *model.Effect) snapshot.EffectV1 {
	return snapshot.EffectV1{
		ID:      e.ID,
		Kind:    string(e.Kind),
		GroupID: e.GroupID,
		OwnerID: e.OwnerID,
		Start:   e.Start,
		End:     e.End,
		State:   string(e.State),

		Hours:       e.Payload.Hours,
		Multiplier:  e.Payload.Multiplier,
		TotalReward: e.Payload.TotalReward,

		OriginalLength: e.Payload.OriginalLength,
		Depth:          e.Payload.Depth,

		Item:          e.Payload.Item,
		BeneficiaryID: e.Payload.BeneficiaryID,
		LastTick:      e.Payload.LastTick,

		GiveawayID: e.Payload.GiveawayID,
	}
}

func importEffect(e snapshot.EffectV1) *model.Effect {
	return &model.Effect{
		ID:      e.ID,
		Kind:    model.EffectKind(e.Kind),
		GroupID: e.GroupID,
		OwnerID: e.OwnerID,
		Start:   e.Start,
		End:     e.End,
		State:   model.EffectState(e.State),
		Payload: model.EffectPayload{
			Hours:       e.Hours,
			Multiplier:  e.Multiplier,
			TotalReward: e.TotalReward,

			OriginalLength: e.OriginalLength,
			Depth:          e.Depth,

			Item:          e.Item,
			BeneficiaryID: e.BeneficiaryID,
			LastTick:      e.LastTick,

			GiveawayID: e.GiveawayID,
		},
	}
}

func exportGiveaway(g *model.Giveaway) snapshot.GiveawayV1 {
	claims := make(map[string]int64, len(g.Claims))
	for k, v := range g.Claims {
		claims[k] = v
	}
	return snapshot.GiveawayV1{
		ID:        g.ID,
		GroupID:   g.GroupID,
		SenderID:  g.SenderID,
		Total:     g.Total,
		Remaining: g.Remaining,
		Shares:    g.Shares,
		Left:      g.Left,
		Claims:    claims,
		CreatedAt: g.CreatedAt,
	}
}

func importGiveaway(g snapshot.GiveawayV1) *model.Giveaway {
	ga := &model.Giveaway{
		ID:        g.ID,
		GroupID:   g.GroupID,
		SenderID:  g.SenderID,
		Total:     g.Total,
		Remaining: g.Remaining,
		Shares:    g.Shares,
		Left:      g.Left,
		Claims:    map[string]int64{},
		CreatedAt: g.CreatedAt,
	}
	for k, v := range g.Claims {
		ga.Claims[k] = v
	}
	return ga
}
