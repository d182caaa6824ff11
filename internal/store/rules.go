package store

import (
	"database/sql"

	"fjacquet/finsync/internal/models"
)

// ListRules returns rules of the given origin ordered by descending match
// count, then id. Classification examines them in exactly this order.
func (s *Store) ListRules(origin models.RuleOrigin) ([]models.CategoryRule, error) {
	rows, err := s.db.Query(`SELECT id, pattern, category, origin, match_count
		FROM category_rules WHERE origin = ?
		ORDER BY match_count DESC, id`, string(origin))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var rules []models.CategoryRule
	for rows.Next() {
		var r models.CategoryRule
		var origin string
		if err := rows.Scan(&r.ID, &r.Pattern, &r.Category, &origin, &r.MatchCount); err != nil {
			return nil, err
		}
		r.Origin = models.RuleOrigin(origin)
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

// FindRuleByPattern looks up a rule with the exact pattern, regardless of
// origin. User rules win when both origins carry the same pattern.
func (s *Store) FindRuleByPattern(pattern string) (models.CategoryRule, bool, error) {
	row := s.db.QueryRow(`SELECT id, pattern, category, origin, match_count
		FROM category_rules WHERE pattern = ?
		ORDER BY CASE origin WHEN 'user' THEN 0 ELSE 1 END
		LIMIT 1`, pattern)

	var r models.CategoryRule
	var origin string
	err := row.Scan(&r.ID, &r.Pattern, &r.Category, &origin, &r.MatchCount)
	if err == sql.ErrNoRows {
		return models.CategoryRule{}, false, nil
	}
	if err != nil {
		return models.CategoryRule{}, false, err
	}
	r.Origin = models.RuleOrigin(origin)
	return r, true, nil
}

// InsertRule creates a new rule. Pattern uniqueness within an origin scope is
// enforced by the schema.
func (s *Store) InsertRule(r models.CategoryRule) error {
	_, err := s.db.Exec(`INSERT INTO category_rules (pattern, category, origin, match_count)
		VALUES (?, ?, ?, ?)`,
		r.Pattern, r.Category, string(r.Origin), r.MatchCount)
	return err
}

// UpdateRule rewrites the category and match count of an existing rule.
func (s *Store) UpdateRule(r models.CategoryRule) error {
	_, err := s.db.Exec(`UPDATE category_rules SET category = ?, match_count = ? WHERE id = ?`,
		r.Category, r.MatchCount, r.ID)
	return err
}

// IncrementRuleMatchCount bumps the match counter of a fired rule by one.
func (s *Store) IncrementRuleMatchCount(id int64) error {
	_, err := s.db.Exec(`UPDATE category_rules SET match_count = match_count + 1 WHERE id = ?`, id)
	return err
}
