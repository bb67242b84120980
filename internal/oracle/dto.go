package oracle

import (
	"errors"
	"fmt"

	"github.com/sakif/practice-tracker/internal/model"
)

// Wire shapes. Required fields are pointers so a missing field is told apart
// from a zero value; a missing required field fails the whole call.

type profileResponse struct {
	Handle      string `json:"handle"`
	Tier        *int   `json:"tier"`
	Rating      *int   `json:"rating"`
	SolvedCount *int   `json:"solvedCount"`
}

func (r profileResponse) toModel(maxTier int) (*model.Profile, error) {
	if r.Tier == nil {
		return nil, errors.New("profile: missing tier")
	}
	if r.Rating == nil {
		return nil, errors.New("profile: missing rating")
	}
	if r.SolvedCount == nil {
		return nil, errors.New("profile: missing solvedCount")
	}
	if *r.Tier < MinTier || *r.Tier > maxTier {
		return nil, fmt.Errorf("profile: tier %d outside [%d, %d]", *r.Tier, MinTier, maxTier)
	}

	return &model.Profile{
		Handle:      r.Handle,
		Tier:        *r.Tier,
		Rating:      *r.Rating,
		SolvedCount: *r.SolvedCount,
	}, nil
}

type searchResponse struct {
	Count *int          `json:"count"`
	Items *[]problemDTO `json:"items"`
}

type problemDTO struct {
	ProblemID *int     `json:"problemId"`
	TitleKo   *string  `json:"titleKo"`
	Level     *int     `json:"level"`
	Tags      []tagDTO `json:"tags"`
}

type tagDTO struct {
	Key string `json:"key"`
}

func (r searchResponse) toModel(limit int) ([]model.Problem, error) {
	if r.Count == nil {
		return nil, errors.New("search: missing count")
	}
	if r.Items == nil {
		return nil, errors.New("search: missing items")
	}

	items := *r.Items
	if len(items) > limit {
		items = items[:limit]
	}

	problems := make([]model.Problem, 0, len(items))
	for i, it := range items {
		if it.ProblemID == nil {
			return nil, fmt.Errorf("search: item %d: missing problemId", i)
		}
		if it.TitleKo == nil {
			return nil, fmt.Errorf("search: item %d: missing titleKo", i)
		}
		if it.Level == nil {
			return nil, fmt.Errorf("search: item %d: missing level", i)
		}

		tags := make([]string, 0, len(it.Tags))
		for _, t := range it.Tags {
			if t.Key != "" {
				tags = append(tags, t.Key)
			}
		}

		problems = append(problems, model.Problem{
			ProblemID: *it.ProblemID,
			Title:     *it.TitleKo,
			Level:     *it.Level,
			Tags:      tags,
		})
	}

	return problems, nil
}
