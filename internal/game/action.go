package game

import (
	"encoding/json"
	"fmt"

	"github.com/vgerber/settler-island-server/internal/board"
	"github.com/vgerber/settler-island-server/internal/economy"
)

// Action ids accepted by the states.
const (
	ActionBuildSettlement     = "BuildSettlement"
	ActionBuildRoad           = "BuildRoad"
	ActionRollDice            = "RollDice"
	ActionEndTurn             = "EndTurn"
	ActionOfferTrade          = "OfferTrade"
	ActionOfferBankTrade      = "OfferBankTrade"
	ActionAcceptTrade         = "AcceptTrade"
	ActionRejectTrade         = "RejectTrade"
	ActionCompleteTrade       = "CompleteTrade"
	ActionCancelTrade         = "CancelTrade"
	ActionPlaceRobber         = "PlaceRobber"
	ActionRemoveCards         = "RemoveCards"
	ActionDrawDevelopmentCard = "DrawDevelopmentCard"
	ActionPlayDevelopmentCard = "PlayDevelopmentCard"
)

// Action is the envelope received from the session layer.
type Action struct {
	ID   string          `json:"id"`
	Data json.RawMessage `json:"data,omitempty"`
}

// NewAction encodes data as the payload of an action.
func NewAction(id string, data any) (Action, error) {
	if data == nil {
		return Action{ID: id}, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return Action{}, fmt.Errorf("encode %s payload: %w", id, err)
	}
	return Action{ID: id, Data: raw}, nil
}

// PlaceSettlementData is the payload of BuildSettlement.
type PlaceSettlementData struct {
	SettlementType board.Building `json:"settlement_type"`
	SettlementID   board.CornerID `json:"settlement_id"`
}

// PlaceRoadData is the payload of BuildRoad.
type PlaceRoadData struct {
	RoadID board.RoadID `json:"road_id"`
}

// PlaceRobberData is the payload of PlaceRobber. RobbedPlayerID may be
// omitted when nobody on the tile can be robbed.
type PlaceRobberData struct {
	TileLocation   board.Coord `json:"tile_location"`
	RobbedPlayerID *int        `json:"robbed_player_id,omitempty"`
}

// TradeOfferData is the payload of OfferTrade and OfferBankTrade.
type TradeOfferData struct {
	ResourceOffer   economy.Collection `json:"resource_offer"`
	ResourceReceive economy.Collection `json:"resource_receive"`
}

// CompleteTradeData is the payload of CompleteTrade.
type CompleteTradeData struct {
	AcceptedPlayerID *int `json:"accepted_player_id"`
}

// PlayDevelopmentCardData is the payload of PlayDevelopmentCard. Monopoly
// reads Resource, Invention reads ResourceA and ResourceB.
type PlayDevelopmentCardData struct {
	Card      board.DevelopmentCard `json:"card"`
	Resource  economy.Resource      `json:"resource,omitempty"`
	ResourceA economy.Resource      `json:"resource_a,omitempty"`
	ResourceB economy.Resource      `json:"resource_b,omitempty"`
}

func decode(a Action, out any) error {
	if len(a.Data) == 0 {
		return reject(ErrActionDataInvalid, "%s: missing payload", a.ID)
	}
	if err := json.Unmarshal(a.Data, out); err != nil {
		return reject(ErrActionDataInvalid, "%s: %v", a.ID, err)
	}
	return nil
}

func decodeCollection(a Action) (economy.Collection, error) {
	var c economy.Collection
	if err := decode(a, &c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, reject(ErrActionDataInvalid, "%s: %v", a.ID, err)
	}
	return c.Clone(), nil
}

func decodeTradeOffer(a Action) (TradeOfferData, error) {
	var data TradeOfferData
	if err := decode(a, &data); err != nil {
		return data, err
	}
	for _, c := range []economy.Collection{data.ResourceOffer, data.ResourceReceive} {
		if err := c.Validate(); err != nil {
			return data, reject(ErrActionDataInvalid, "%s: %v", a.ID, err)
		}
	}
	data.ResourceOffer = data.ResourceOffer.Clone()
	data.ResourceReceive = data.ResourceReceive.Clone()
	if data.ResourceOffer.Total() == 0 || data.ResourceReceive.Total() == 0 {
		return data, reject(ErrActionDataInvalid, "%s: both sides of a trade need resources", a.ID)
	}
	if data.ResourceOffer.Overlaps(data.ResourceReceive) {
		return data, reject(ErrActionDataInvalid, "%s: offer and receive share a resource", a.ID)
	}
	return data, nil
}
