// ABOUTME: MCP tool implementations for the rhythm store.
// ABOUTME: Exposes onboarding, check-ins, routines and the garden economy.
package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/harperreed/rhythm/internal/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools() {
	// get_profile
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_profile",
		Description: "Get the user's profile: tokens, streaks and settings",
	}, s.handleGetProfile)

	// complete_onboarding
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "complete_onboarding",
		Description: "Set the user's name and mark onboarding as done",
	}, s.handleCompleteOnboarding)

	// update_profile
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "update_profile",
		Description: "Update profile settings such as name or reminder times",
	}, s.handleUpdateProfile)

	// save_daily_log
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "save_daily_log",
		Description: "Record today's check-in; only the given fields change",
	}, s.handleSaveDailyLog)

	// get_today_log
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_today_log",
		Description: "Get today's check-in",
	}, s.handleGetTodayLog)

	// new_routine
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "new_routine",
		Description: "Get the active routine, drawing one if there is none",
	}, s.handleNewRoutine)

	// complete_routine
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "complete_routine",
		Description: "Complete the active routine and collect the token reward",
	}, s.handleCompleteRoutine)

	// refresh_routine
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "refresh_routine",
		Description: "Swap the routine for a new one, free once an hour or paid with tokens",
	}, s.handleRefreshRoutine)

	// throw_object
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "throw_object",
		Description: "Spend tokens to throw an object into the river and add it to the garden",
	}, s.handleThrowObject)

	// list_garden
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_garden",
		Description: "List garden items, newest first",
	}, s.handleListGarden)
}

// Tool input/output types

type emptyInput struct{}

type onboardingInput struct {
	Name string `json:"name" jsonschema:"The user's display name"`
}

type updateProfileInput struct {
	Name    *string `json:"name,omitempty" jsonschema:"Display name"`
	Morning *string `json:"morning,omitempty" jsonschema:"Morning reminder time as HH:MM"`
	Evening *string `json:"evening,omitempty" jsonschema:"Evening reminder time as HH:MM"`
}

type saveDailyLogInput struct {
	SleepHours      *float64 `json:"sleep_hours,omitempty" jsonschema:"Hours slept"`
	SleepQuality    *int     `json:"sleep_quality,omitempty" jsonschema:"Sleep quality from 1 to 5"`
	MealCount       *int     `json:"meal_count,omitempty" jsonschema:"Meals eaten"`
	Appetite        *int     `json:"appetite,omitempty" jsonschema:"Appetite from 1 to 5"`
	Mood            *string  `json:"mood,omitempty" jsonschema:"One of worst, bad, soso, good, great"`
	Energy          *int     `json:"energy,omitempty" jsonschema:"Energy from 1 to 5"`
	Anxiety         *int     `json:"anxiety,omitempty" jsonschema:"Anxiety from 1 to 5"`
	Symptoms        []string `json:"symptoms,omitempty" jsonschema:"Physical symptoms"`
	Note            *string  `json:"note,omitempty" jsonschema:"Free-form note"`
	CheckInComplete *bool    `json:"check_in_complete,omitempty" jsonschema:"Mark the check-in as finished"`
}

type todayLogOutput struct {
	Date  string           `json:"date"`
	Found bool             `json:"found"`
	Log   *models.DailyLog `json:"log,omitempty"`
}

type refreshRoutineInput struct {
	Paid bool `json:"paid,omitempty" jsonschema:"Pay tokens instead of waiting for the free refresh"`
}

type routineOutput struct {
	Routine models.Routine `json:"routine"`
	Message string         `json:"message"`
}

type completeRoutineOutput struct {
	Tokens        float64 `json:"tokens"`
	CurrentStreak int     `json:"current_streak"`
	BestStreak    int     `json:"best_streak"`
	Message       string  `json:"message"`
}

type throwObjectInput struct {
	OriginType string   `json:"origin_type" jsonschema:"Object or plant: stone, pebble, branch, cup, book, clock, sunflower, rose, tree"`
	Cost       *float64 `json:"cost,omitempty" jsonschema:"Token cost, defaults to the catalog price"`
}

type throwObjectOutput struct {
	Item    models.GardenItem `json:"item"`
	Tokens  float64           `json:"tokens"`
	Message string            `json:"message"`
}

type listGardenInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Max results (default 20)"`
}

// Tool handlers

func (s *Server) handleGetProfile(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, models.Profile, error) {
	return nil, s.store.Profile(), nil
}

func (s *Server) handleCompleteOnboarding(ctx context.Context, req *mcp.CallToolRequest, input onboardingInput) (*mcp.CallToolResult, models.Profile, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, models.Profile{}, fmt.Errorf("name is required")
	}
	return nil, s.store.CompleteOnboarding(name), nil
}

func (s *Server) handleUpdateProfile(ctx context.Context, req *mcp.CallToolRequest, input updateProfileInput) (*mcp.CallToolResult, models.Profile, error) {
	var u models.ProfileUpdate
	u.Name = input.Name
	if input.Morning != nil || input.Evening != nil {
		nt := s.store.Profile().NotificationTime
		if input.Morning != nil {
			nt.Morning = *input.Morning
		}
		if input.Evening != nil {
			nt.Evening = *input.Evening
		}
		u.NotificationTime = &nt
	}
	return nil, s.store.UpdateProfile(u), nil
}

func (s *Server) handleSaveDailyLog(ctx context.Context, req *mcp.CallToolRequest, input saveDailyLogInput) (*mcp.CallToolResult, models.DailyLog, error) {
	if input.Mood != nil && !models.IsValidMood(*input.Mood) {
		return nil, models.DailyLog{}, fmt.Errorf("unknown mood: %s (valid: %s)", *input.Mood, strings.Join(models.AllMoods, ", "))
	}

	saved := s.store.SaveDailyLog(models.DailyLog{
		SleepHours:       input.SleepHours,
		SleepQuality:     input.SleepQuality,
		MealCount:        input.MealCount,
		Appetite:         input.Appetite,
		Mood:             input.Mood,
		Energy:           input.Energy,
		Anxiety:          input.Anxiety,
		PhysicalSymptoms: input.Symptoms,
		Note:             input.Note,
		CheckInComplete:  input.CheckInComplete,
	})
	return nil, saved, nil
}

func (s *Server) handleGetTodayLog(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, todayLogOutput, error) {
	out := todayLogOutput{Date: s.store.TodayKey()}
	if l, ok := s.store.TodayLog(); ok {
		out.Found = true
		out.Log = &l
	}
	return nil, out, nil
}

func (s *Server) handleNewRoutine(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, routineOutput, error) {
	if r := s.store.Routine(); r != nil && !r.Completed {
		return nil, routineOutput{Routine: *r, Message: "Routine already active: " + r.Text}, nil
	}
	r, err := s.store.DrawRoutine(false)
	if err != nil {
		return nil, routineOutput{}, fmt.Errorf("failed to draw routine: %w", err)
	}
	return nil, routineOutput{Routine: r, Message: "New routine: " + r.Text}, nil
}

func (s *Server) handleCompleteRoutine(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, completeRoutineOutput, error) {
	p, err := s.store.CompleteRoutine()
	if err != nil {
		return nil, completeRoutineOutput{}, fmt.Errorf("failed to complete routine: %w", err)
	}
	return nil, completeRoutineOutput{
		Tokens:        p.Tokens,
		CurrentStreak: p.CurrentStreak,
		BestStreak:    p.BestStreak,
		Message:       fmt.Sprintf("Routine done. %.1f tokens, %d day streak", p.Tokens, p.CurrentStreak),
	}, nil
}

func (s *Server) handleRefreshRoutine(ctx context.Context, req *mcp.CallToolRequest, input refreshRoutineInput) (*mcp.CallToolResult, routineOutput, error) {
	r, err := s.store.DrawRoutine(input.Paid)
	if err != nil {
		return nil, routineOutput{}, fmt.Errorf("failed to refresh routine: %w", err)
	}
	return nil, routineOutput{Routine: r, Message: "New routine: " + r.Text}, nil
}

func (s *Server) handleThrowObject(ctx context.Context, req *mcp.CallToolRequest, input throwObjectInput) (*mcp.CallToolResult, throwObjectOutput, error) {
	origin := models.OriginType(input.OriginType)
	cost, ok := models.OriginCosts[origin]
	if input.Cost != nil {
		cost = *input.Cost
	} else if !ok {
		return nil, throwObjectOutput{}, fmt.Errorf("unknown origin type: %s", input.OriginType)
	}

	item, err := s.store.ThrowObject(origin, cost)
	if err != nil {
		return nil, throwObjectOutput{}, fmt.Errorf("failed to throw %s: %w", input.OriginType, err)
	}
	tokens := s.store.Profile().Tokens
	return nil, throwObjectOutput{
		Item:    item,
		Tokens:  tokens,
		Message: fmt.Sprintf("Threw a %s for %.1f tokens (%.1f left)", origin, cost, tokens),
	}, nil
}

func (s *Server) handleListGarden(ctx context.Context, req *mcp.CallToolRequest, input listGardenInput) (*mcp.CallToolResult, any, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}

	garden := s.store.Garden()
	if len(garden) == 0 {
		return nil, map[string]interface{}{"message": "The garden is empty."}, nil
	}

	items := make([]models.GardenItem, 0, min(input.Limit, len(garden)))
	for i := len(garden) - 1; i >= 0 && len(items) < input.Limit; i-- {
		items = append(items, garden[i])
	}
	return nil, map[string]interface{}{
		"items": items,
		"total": len(garden),
	}, nil
}
