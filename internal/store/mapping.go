package store

import (
	"encoding/json"
	"fmt"

	"poker-platform/internal/models"
	domain "poker-platform/models"
)

func tournamentToDomain(r models.Tournament) domain.Tournament {
	return domain.Tournament{
		ID:                    r.ID,
		Name:                  r.Name,
		Slug:                  r.Slug,
		Kind:                  domain.Kind(r.Kind),
		Status:                domain.TournamentStatus(r.Status),
		Structure:             r.Structure,
		BuyIn:                 r.BuyIn,
		StartingStack:         r.StartingStack,
		MinPlayers:            r.MinPlayers,
		MaxPlayers:            r.MaxPlayers,
		SeatCount:             r.SeatCount,
		ScheduledStartTime:    r.ScheduledStartTime.UTC(),
		LateRegistrationUntil: utcPtr(r.LateRegistrationUntil),
		ButtonSeat:            r.ButtonSeat,
		HandsPlayed:           r.HandsPlayed,
		StartedAt:             utcPtr(r.StartedAt),
		FinishedAt:            utcPtr(r.FinishedAt),
		CreatedAt:             r.CreatedAt.UTC(),
	}
}

func tournamentFromDomain(t *domain.Tournament) models.Tournament {
	return models.Tournament{
		ID:                    t.ID,
		Name:                  t.Name,
		Slug:                  t.Slug,
		Kind:                  string(t.Kind),
		Status:                string(t.Status),
		Structure:             t.Structure,
		BuyIn:                 t.BuyIn,
		StartingStack:         t.StartingStack,
		MinPlayers:            t.MinPlayers,
		MaxPlayers:            t.MaxPlayers,
		SeatCount:             t.SeatCount,
		ScheduledStartTime:    t.ScheduledStartTime,
		LateRegistrationUntil: t.LateRegistrationUntil,
		ButtonSeat:            t.ButtonSeat,
		HandsPlayed:           t.HandsPlayed,
		StartedAt:             t.StartedAt,
		FinishedAt:            t.FinishedAt,
		CreatedAt:             t.CreatedAt,
	}
}

func participantToDomain(r models.Participant) domain.Participant {
	return domain.Participant{
		ID:           r.ID,
		TournamentID: r.TournamentID,
		Occupant:     domain.Occupant{Kind: domain.OccupantKind(r.OccupantKind), ID: r.OccupantID},
		SeatNumber:   r.SeatNumber,
		Stack:        r.Stack,
		Status:       domain.ParticipantStatus(r.Status),
		CreatedAt:    r.CreatedAt.UTC(),
	}
}

func participantFromDomain(p *domain.Participant) models.Participant {
	return models.Participant{
		ID:           p.ID,
		TournamentID: p.TournamentID,
		OccupantKind: string(p.Occupant.Kind),
		OccupantID:   p.Occupant.ID,
		SeatNumber:   p.SeatNumber,
		Stack:        p.Stack,
		Status:       string(p.Status),
		CreatedAt:    p.CreatedAt,
	}
}

func handToDomain(r models.Hand) (*domain.HandState, error) {
	var h domain.HandState
	if err := json.Unmarshal([]byte(r.State), &h); err != nil {
		return nil, fmt.Errorf("decode hand %s: %w", r.TournamentID, err)
	}
	h.Version = r.Version
	return &h, nil
}

func handFromDomain(h *domain.HandState) (models.Hand, error) {
	raw, err := json.Marshal(h)
	if err != nil {
		return models.Hand{}, fmt.Errorf("encode hand %s: %w", h.TournamentID, err)
	}
	return models.Hand{
		TournamentID: h.TournamentID,
		HandNumber:   h.HandNumber,
		Version:      h.Version,
		Concluded:    h.Concluded,
		State:        string(raw),
		UpdatedAt:    h.UpdatedAt,
	}, nil
}

func historyToDomain(r models.HandHistory) (domain.HandHistory, error) {
	out := domain.HandHistory{
		ID:           r.ID,
		TournamentID: r.TournamentID,
		HandNumber:   r.HandNumber,
		Pot:          r.Pot,
		HandLabel:    r.HandLabel,
		CreatedAt:    r.CreatedAt.UTC(),
	}
	if err := json.Unmarshal([]byte(r.Winners), &out.Winners); err != nil {
		return out, fmt.Errorf("decode winners of hand %d: %w", r.ID, err)
	}
	if err := json.Unmarshal([]byte(r.CommunityCards), &out.CommunityCards); err != nil {
		return out, fmt.Errorf("decode board of hand %d: %w", r.ID, err)
	}
	return out, nil
}

func historyFromHand(h *domain.HandState, pot int) (models.HandHistory, error) {
	winners, err := json.Marshal(h.Winners)
	if err != nil {
		return models.HandHistory{}, err
	}
	board, err := json.Marshal(h.CommunityCards)
	if err != nil {
		return models.HandHistory{}, err
	}
	return models.HandHistory{
		TournamentID:   h.TournamentID,
		HandNumber:     h.HandNumber,
		Pot:            pot,
		Winners:        string(winners),
		CommunityCards: string(board),
		HandLabel:      h.HandLabel,
		CreatedAt:      h.UpdatedAt,
	}, nil
}
