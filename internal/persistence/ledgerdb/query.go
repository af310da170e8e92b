package ledgerdb

// Read-side queries for the admin tool. Background batches commit within a
// couple of seconds, so results can trail the live engine slightly.

type SettlementSummary struct {
	EffectID string
	GroupID  string
	OwnerID  string
	Kind     string
	Outcome  string
	Payout   int64
	Penalty  int64
	At       int64
}

func (s *SQLiteLedger) RecentSettlements(groupID string, limit int) ([]SettlementSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT effect_id,group_id,owner_id,kind,outcome,payout,penalty,settled_at
		 FROM settlements WHERE group_id = ? ORDER BY settled_at DESC LIMIT ?`,
		groupID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SettlementSummary
	for rows.Next() {
		var r SettlementSummary
		if err := rows.Scan(&r.EffectID, &r.GroupID, &r.OwnerID, &r.Kind, &r.Outcome, &r.Payout, &r.Penalty, &r.At); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type TaxTotals struct {
	GroupID string
	Entries int64
	Gross   int64
	Tax     int64
	Net     int64
}

func (s *SQLiteLedger) TaxTotalsByGroup() ([]TaxTotals, error) {
	rows, err := s.db.Query(
		`SELECT group_id, COUNT(*), COALESCE(SUM(gross),0), COALESCE(SUM(tax),0), COALESCE(SUM(net),0)
		 FROM taxes GROUP BY group_id ORDER BY group_id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TaxTotals
	for rows.Next() {
		var r TaxTotals
		if err := rows.Scan(&r.GroupID, &r.Entries, &r.Gross, &r.Tax, &r.Net); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteLedger) Disbursements(groupID string, limit int) ([]DisbursementRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT at,group_id,target_id,kind,amount
		 FROM disbursements WHERE group_id = ? ORDER BY at DESC LIMIT ?`,
		groupID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DisbursementRow
	for rows.Next() {
		var r DisbursementRow
		if err := rows.Scan(&r.At, &r.GroupID, &r.TargetID, &r.Kind, &r.Amount); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
