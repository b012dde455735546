package output

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/chrisdamba/foodmatch/internal/models"
)

const (
	TopicRankedResults = "ranked_results"

	EventTypeRankedResult = "ranked_result"
)

// RankedResultEvent is one ranked vendor of one recommendation, flattened for
// the file sinks and Kafka.
type RankedResultEvent struct {
	Timestamp        int64   `json:"timestamp" parquet:"name=timestamp,type=INT64"`
	EventType        string  `json:"eventType" parquet:"name=eventType,type=BYTE_ARRAY,convertedtype=UTF8"`
	RecommendationID string  `json:"recommendationId" parquet:"name=recommendationId,type=BYTE_ARRAY,convertedtype=UTF8"`
	SearchType       string  `json:"searchType" parquet:"name=searchType,type=BYTE_ARRAY,convertedtype=UTF8"`
	DisplayText      string  `json:"displayText" parquet:"name=displayText,type=BYTE_ARRAY,convertedtype=UTF8"`
	UserLat          float64 `json:"userLat" parquet:"name=userLat,type=DOUBLE"`
	UserLon          float64 `json:"userLon" parquet:"name=userLon,type=DOUBLE"`
	Rank             int32   `json:"rank" parquet:"name=rank,type=INT32"`
	VendorID         string  `json:"vendorId" parquet:"name=vendorId,type=BYTE_ARRAY,convertedtype=UTF8"`
	VendorName       string  `json:"vendorName" parquet:"name=vendorName,type=BYTE_ARRAY,convertedtype=UTF8"`
	Category         string  `json:"category" parquet:"name=category,type=BYTE_ARRAY,convertedtype=UTF8"`
	MenuItemID       string  `json:"menuItemId" parquet:"name=menuItemId,type=BYTE_ARRAY,convertedtype=UTF8"`
	MenuItemName     string  `json:"menuItemName" parquet:"name=menuItemName,type=BYTE_ARRAY,convertedtype=UTF8"`
	Distance         float64 `json:"distance" parquet:"name=distance,type=DOUBLE"`
	WalkTime         int32   `json:"walkTime" parquet:"name=walkTime,type=INT32"`
	MatchScore       int32   `json:"matchScore" parquet:"name=matchScore,type=INT32"`
	MatchReason      string  `json:"matchReason" parquet:"name=matchReason,type=BYTE_ARRAY,convertedtype=UTF8"`
}

// NewRankedResultEvent flattens the result at position rank (1-based).
func NewRankedResultEvent(recommendationID string, intent models.FoodIntent, user models.Location, rank int, r models.FoodResult, at time.Time) RankedResultEvent {
	ev := RankedResultEvent{
		Timestamp:        at.Unix(),
		EventType:        EventTypeRankedResult,
		RecommendationID: recommendationID,
		SearchType:       string(intent.SearchType),
		DisplayText:      intent.DisplayText,
		UserLat:          user.Lat,
		UserLon:          user.Lon,
		Rank:             int32(rank),
		VendorID:         r.Vendor.ID,
		VendorName:       r.Vendor.Name,
		Category:         string(r.Vendor.Category),
		Distance:         r.Distance,
		WalkTime:         int32(r.WalkTime),
		MatchScore:       int32(r.MatchScore),
		MatchReason:      r.MatchReason,
	}
	if r.MenuItem != nil {
		ev.MenuItemID = r.MenuItem.ID
		ev.MenuItemName = r.MenuItem.Name
	}
	return ev
}

// decodeEvent turns a message body back into the typed event for its topic.
func decodeEvent(topic string, msg []byte) (RankedResultEvent, error) {
	var ev RankedResultEvent
	if topic != TopicRankedResults {
		return ev, fmt.Errorf("no schema for topic %q", topic)
	}
	if err := json.Unmarshal(msg, &ev); err != nil {
		return ev, fmt.Errorf("decode %s event: %w", topic, err)
	}
	return ev, nil
}

func partitionPath(timestamp int64) string {
	eventTime := time.Unix(timestamp, 0).UTC()
	year, month, day := eventTime.Date()
	return fmt.Sprintf("year=%d/month=%02d/day=%02d/hour=%02d", year, month, day, eventTime.Hour())
}

// eventTimestamp reads the "timestamp" field every event carries.
func eventTimestamp(msg []byte) (int64, error) {
	var head struct {
		Timestamp *int64 `json:"timestamp"`
	}
	if err := json.Unmarshal(msg, &head); err != nil {
		return 0, err
	}
	if head.Timestamp == nil {
		return 0, fmt.Errorf("invalid timestamp")
	}
	return *head.Timestamp, nil
}
