package crawler

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"go.uber.org/zap"

	"github.com/TheBoringBakery/MoonCaker/internal/riot"
	"github.com/TheBoringBakery/MoonCaker/internal/store"
)

// Role derivation constants. The lane split points are map units on the
// 0..~15000 Summoner's Rift grid, mirrored across the diagonal; spell 11 is
// Smite, which marks the jungler regardless of position.
const (
	smiteSpellID    = 11
	laneSplitLow    = 3500
	laneSplitHigh   = 11000
	earlyFrameIndex = 2
)

type role string

const (
	roleTop    role = "TOP"
	roleJungle role = "JUNGLE"
	roleMid    role = "MID"
	roleBot    role = "BOT"
)

var patchRe = regexp.MustCompile(`^\d+\.\d+`)

// matchDetails fetches summary and timeline for each candidate id and
// derives canonical documents. Ids whose fetches fail or whose role
// derivation is structurally invalid contribute nothing; valid documents
// come back in input order.
func (e *Engine) matchDetails(ctx context.Context, region string, ids []string) []store.MatchDocument {
	bigRegion, ok := riot.BigRegion(region)
	if !ok {
		e.logger.Error("no big-region routing", zap.String("region", region))
		return nil
	}

	docs := make([]store.MatchDocument, 0, len(ids))
	for _, id := range ids {
		if ctx.Err() != nil {
			return docs
		}
		match, err := e.api.MatchByID(ctx, bigRegion, id)
		if err != nil {
			e.logger.Debug("match fetch failed", zap.String("match_id", id), zap.Error(err))
			continue
		}
		timeline, err := e.api.TimelineByID(ctx, bigRegion, id)
		if err != nil {
			e.logger.Debug("timeline fetch failed", zap.String("match_id", id), zap.Error(err))
			continue
		}
		doc, err := buildDocument(id, region, match, timeline)
		if err != nil {
			matchesDiscarded.Inc()
			e.logger.Debug("match discarded", zap.String("match_id", id), zap.Error(err))
			continue
		}
		docs = append(docs, doc)
	}
	return docs
}

// buildDocument derives the canonical document for one match. It fails when
// the timeline is too short to sample, the patch string is malformed, or the
// role derivation does not land on exactly five distinct slots per team.
func buildDocument(id, region string, match riot.Match, timeline riot.Timeline) (store.MatchDocument, error) {
	info := match.Info
	if len(info.Teams) != 2 {
		return store.MatchDocument{}, fmt.Errorf("expected 2 teams, got %d", len(info.Teams))
	}
	if len(timeline.Info.Frames) <= earlyFrameIndex {
		return store.MatchDocument{}, fmt.Errorf("timeline has only %d frames", len(timeline.Info.Frames))
	}

	patch := patchRe.FindString(info.GameVersion)
	if patch == "" {
		return store.MatchDocument{}, fmt.Errorf("unparsable game version %q", info.GameVersion)
	}

	earlyFrame := timeline.Info.Frames[earlyFrameIndex].ParticipantFrames
	lastFrame := timeline.Info.Frames[len(timeline.Info.Frames)-1].ParticipantFrames

	winner := info.Teams[0].TeamID
	if info.Teams[1].Win {
		winner = info.Teams[1].TeamID
	}

	teams := [2]store.Team{
		{TeamID: info.Teams[0].TeamID, Bans: banList(info.Teams[0])},
		{TeamID: info.Teams[1].TeamID, Bans: banList(info.Teams[1])},
	}

	// assigned tracks the uniquely-positioned lanes; bot lanes collect the
	// pair disambiguated by farm afterwards.
	type laneMap map[role]store.RolePlayer
	assigned := [2]laneMap{{}, {}}
	var bot [2][]riot.Participant

	for _, participant := range info.Participants {
		side := 0
		if participant.TeamID != teams[0].TeamID {
			side = 1
		}
		frame, ok := earlyFrame[strconv.Itoa(participant.ParticipantID)]
		if !ok {
			return store.MatchDocument{}, fmt.Errorf("participant %d missing from early frame", participant.ParticipantID)
		}
		r := deriveRole(frame.Position, participant)
		if r == roleBot {
			bot[side] = append(bot[side], participant)
			continue
		}
		if _, taken := assigned[side][r]; taken {
			return store.MatchDocument{}, fmt.Errorf("role collision on %s", r)
		}
		assigned[side][r] = store.RolePlayer{SummonerID: participant.PUUID, ChampionID: participant.ChampionID}
	}

	for side := range teams {
		if len(bot[side]) != 2 || len(assigned[side]) != 3 {
			return store.MatchDocument{}, fmt.Errorf(
				"team %d resolved %d solo lanes and %d bot players", teams[side].TeamID, len(assigned[side]), len(bot[side]))
		}
		support, adc, err := splitBotLane(bot[side], lastFrame)
		if err != nil {
			return store.MatchDocument{}, err
		}
		teams[side].Top = assigned[side][roleTop]
		teams[side].Jungle = assigned[side][roleJungle]
		teams[side].Mid = assigned[side][roleMid]
		teams[side].Support = support
		teams[side].ADC = adc
	}

	return store.MatchDocument{
		ID:              id,
		Region:          region,
		DurationSeconds: info.GameDuration,
		Patch:           patch,
		WinningTeamID:   winner,
		Team1:           teams[0],
		Team2:           teams[1],
	}, nil
}

func banList(team riot.MatchTeam) []int {
	bans := make([]int, 0, len(team.Bans))
	for _, ban := range team.Bans {
		bans = append(bans, ban.ChampionID)
	}
	return bans
}

// deriveRole classifies a participant: Smite marks the jungler outright,
// otherwise the early-game position falls into the bottom, top or mid band
// of the map diagonal.
func deriveRole(pos riot.Position, p riot.Participant) role {
	if p.Summoner1ID == smiteSpellID || p.Summoner2ID == smiteSpellID {
		return roleJungle
	}
	x, y := pos.X, pos.Y
	if (x > laneSplitLow && y < laneSplitLow) || (x > laneSplitHigh && y < laneSplitHigh) {
		return roleBot
	}
	if (x < laneSplitLow && y > laneSplitLow) || (x < laneSplitHigh && y > laneSplitHigh) {
		return roleTop
	}
	return roleMid
}

// splitBotLane disambiguates the bottom-lane pair by final minion kills: the
// lower-farm player is the support, ties going to the first participant.
func splitBotLane(pair []riot.Participant, lastFrame map[string]riot.ParticipantFrame) (support, adc store.RolePlayer, err error) {
	var farm [2]int
	for i, participant := range pair {
		frame, ok := lastFrame[strconv.Itoa(participant.ParticipantID)]
		if !ok {
			return store.RolePlayer{}, store.RolePlayer{}, fmt.Errorf(
				"participant %d missing from last frame", participant.ParticipantID)
		}
		farm[i] = frame.MinionsKilled
	}
	supportIdx := 0
	if farm[1] < farm[0] {
		supportIdx = 1
	}
	adcIdx := 1 - supportIdx
	toRolePlayer := func(p riot.Participant) store.RolePlayer {
		return store.RolePlayer{SummonerID: p.PUUID, ChampionID: p.ChampionID}
	}
	return toRolePlayer(pair[supportIdx]), toRolePlayer(pair[adcIdx]), nil
}
