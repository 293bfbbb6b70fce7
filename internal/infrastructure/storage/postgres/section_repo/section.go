// Package section_repo reads the per-section quantity-tracking flags.
// Section administration is external; this repository is a read-only consumer.
package section_repo

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"

	"varicat/internal/core/apperror"
	"varicat/internal/core/id"
	"varicat/internal/domain/sections"
	"varicat/internal/infrastructure/storage/postgres"
)

// SectionRepo implements sections.Provider.
type SectionRepo struct {
	txm *postgres.TxManager
}

// NewSectionRepo creates a new section settings repository.
func NewSectionRepo(txm *postgres.TxManager) *SectionRepo {
	return &SectionRepo{txm: txm}
}

// settingsForItemSQL joins the item to its section settings. The COALESCEs
// implement the default: a section with no stored row tracks quantity only
// at the item base.
const settingsForItemSQL = `
	SELECT
		i.section_id,
		COALESCE(s.offer_quantity, false)        AS offer_quantity,
		COALESCE(s.variation_quantity, false)    AS variation_quantity,
		COALESCE(s.modification_quantity, false) AS modification_quantity
	FROM cat_items i
	LEFT JOIN cat_section_settings s ON s.section_id = i.section_id
	WHERE i.id = $1 AND i.deletion_mark = false
`

// SettingsForItem implements sections.Provider.
func (r *SectionRepo) SettingsForItem(ctx context.Context, itemID id.ID) (sections.Settings, error) {
	var settings sections.Settings

	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &settings, settingsForItemSQL, itemID); err != nil {
		if pgxscan.NotFound(err) {
			return sections.Settings{}, apperror.NewNotFound("cat_items", itemID.String())
		}
		return sections.Settings{}, fmt.Errorf("settings for item: %w", err)
	}

	return settings, nil
}

// Ensure interface compliance.
var _ sections.Provider = (*SectionRepo)(nil)
