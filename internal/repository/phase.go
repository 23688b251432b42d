package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/pmoffice/framework-portal/internal/domain/model"
)

// PhaseRepository — интерфейс для таблицы phases.
type PhaseRepository interface {
	// List возвращает все фазы по возрастанию order.
	// Каждая фаза дополняется joined-церемонией (nil если ссылки нет).
	List(ctx context.Context) ([]model.Phase, error)
	// Get возвращает фазу по id. Если не найдена — ErrNotFound.
	Get(ctx context.Context, id string) (*model.Phase, error)
	// Update обновляет существующую фазу. Если нет — ErrNotFound,
	// при нарушении уникальности order — ErrConflict.
	Update(ctx context.Context, p *model.Phase) (*model.Phase, error)
}

type phaseRepo struct {
	db DBTX
}

// NewPhaseRepository создаёт репозиторий фаз.
func NewPhaseRepository(db DBTX) PhaseRepository {
	return &phaseRepo{db: db}
}

// scanPhase читает строку фазы. toolLinks и docuwareLinks хранятся
// как jsonb, разбираем вручную.
func scanPhase(row pgx.Row) (*model.Phase, error) {
	p := &model.Phase{}
	var toolLinks, docuwareLinks []byte

	err := row.Scan(
		&p.ID, &p.Order, &p.Name, &p.ShortName, &p.Narrative,
		&p.EntryCriteria, &p.ExitGate, &toolLinks, &docuwareLinks,
		&p.CeremonyID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(toolLinks, &p.ToolLinks); err != nil {
		return nil, fmt.Errorf("ошибка разбора tool_links фазы %s: %w", p.ID, err)
	}
	if err := json.Unmarshal(docuwareLinks, &p.DocuwareLinks); err != nil {
		return nil, fmt.Errorf("ошибка разбора docuware_links фазы %s: %w", p.ID, err)
	}
	return p, nil
}

const phaseColumns = `id, "order", name, short_name, narrative, entry_criteria, exit_gate,
		tool_links, docuware_links, ceremony_id, created_at, updated_at`

// List возвращает фазы по возрастанию order с joined-церемониями.
// Отсутствующая церемония — nil, не ошибка.
func (r *phaseRepo) List(ctx context.Context) ([]model.Phase, error) {
	query := `
		SELECT p.id, p."order", p.name, p.short_name, p.narrative,
			p.entry_criteria, p.exit_gate, p.tool_links, p.docuware_links,
			p.ceremony_id, p.created_at, p.updated_at,
			c.id, c.name, c.purpose, c.participants, c.inputs, c.outputs,
			c.template_link, c.created_at, c.updated_at
		FROM phases p
		LEFT JOIN ceremonies c ON c.id = p.ceremony_id
		ORDER BY p."order"`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка фаз: %w", err)
	}
	defer rows.Close()

	var phases []model.Phase
	for rows.Next() {
		var p model.Phase
		var toolLinks, docuwareLinks []byte

		// Поля церемонии nullable из-за LEFT JOIN
		var cID, cName, cPurpose, cTemplateLink *string
		var cParticipants, cInputs, cOutputs []string
		var cCreatedAt, cUpdatedAt *time.Time

		err := rows.Scan(
			&p.ID, &p.Order, &p.Name, &p.ShortName, &p.Narrative,
			&p.EntryCriteria, &p.ExitGate, &toolLinks, &docuwareLinks,
			&p.CeremonyID, &p.CreatedAt, &p.UpdatedAt,
			&cID, &cName, &cPurpose, &cParticipants, &cInputs, &cOutputs,
			&cTemplateLink, &cCreatedAt, &cUpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования фазы: %w", err)
		}

		if err := json.Unmarshal(toolLinks, &p.ToolLinks); err != nil {
			return nil, fmt.Errorf("ошибка разбора tool_links фазы %s: %w", p.ID, err)
		}
		if err := json.Unmarshal(docuwareLinks, &p.DocuwareLinks); err != nil {
			return nil, fmt.Errorf("ошибка разбора docuware_links фазы %s: %w", p.ID, err)
		}

		if cID != nil {
			p.Ceremony = &model.Ceremony{
				ID:           *cID,
				Name:         *cName,
				Purpose:      *cPurpose,
				Participants: cParticipants,
				Inputs:       cInputs,
				Outputs:      cOutputs,
				TemplateLink: *cTemplateLink,
				CreatedAt:    *cCreatedAt,
				UpdatedAt:    *cUpdatedAt,
			}
		}

		phases = append(phases, p)
	}
	return phases, rows.Err()
}

// Get возвращает фазу по id (без joined-церемонии).
func (r *phaseRepo) Get(ctx context.Context, id string) (*model.Phase, error) {
	query := `SELECT ` + phaseColumns + ` FROM phases WHERE id = $1`

	p, err := scanPhase(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения фазы %s: %w", id, err)
	}
	return p, nil
}

// Update обновляет существующую фазу и возвращает сохранённую строку.
// Нарушение уникальности "order" транслируется в ErrConflict.
func (r *phaseRepo) Update(ctx context.Context, p *model.Phase) (*model.Phase, error) {
	toolLinks, err := json.Marshal(linksOrEmpty(p.ToolLinks))
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации tool_links: %w", err)
	}
	docuwareLinks, err := json.Marshal(docLinksOrEmpty(p.DocuwareLinks))
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации docuware_links: %w", err)
	}

	query := `
		UPDATE phases
		SET "order" = $2,
			name = $3,
			short_name = $4,
			narrative = $5,
			entry_criteria = $6,
			exit_gate = $7,
			tool_links = $8,
			docuware_links = $9,
			ceremony_id = $10,
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + phaseColumns

	updated, err := scanPhase(r.db.QueryRow(ctx, query,
		p.ID, p.Order, p.Name, p.ShortName, p.Narrative,
		p.EntryCriteria, p.ExitGate, toolLinks, docuwareLinks, p.CeremonyID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("ошибка обновления фазы %s: %w", p.ID, err)
	}
	return updated, nil
}

// linksOrEmpty гарантирует сериализацию в "[]", а не "null".
func linksOrEmpty(links []model.ToolLink) []model.ToolLink {
	if links == nil {
		return []model.ToolLink{}
	}
	return links
}

func docLinksOrEmpty(links []model.DocuwareLink) []model.DocuwareLink {
	if links == nil {
		return []model.DocuwareLink{}
	}
	return links
}
