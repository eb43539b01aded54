package tools

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/skyops/irops/pkg/config"
	"github.com/skyops/irops/pkg/models"
	"github.com/skyops/irops/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDynamo struct {
	query   func(*dynamodb.QueryInput) (*dynamodb.QueryOutput, error)
	getItem func(*dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error)
}

func (f *fakeDynamo) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	return f.query(in)
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	return f.getItem(in)
}

func (f *fakeDynamo) PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) UpdateItem(context.Context, *dynamodb.UpdateItemInput, ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	return &dynamodb.UpdateItemOutput{}, nil
}

func newTestRegistry(t *testing.T, db store.DynamoAPI) *Registry {
	t.Helper()
	s := store.New(db, config.Tables{Flights: "flights"}, slog.New(slog.DiscardHandler))
	registry, err := NewRegistry(s)
	require.NoError(t, err)
	return registry
}

func decode(t *testing.T, raw json.RawMessage) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestToolExecute(t *testing.T) {
	registry := newTestRegistry(t, &fakeDynamo{
		query: func(*dynamodb.QueryInput) (*dynamodb.QueryOutput, error) {
			return &dynamodb.QueryOutput{
				Items: []map[string]types.AttributeValue{{
					"flight_id":     &types.AttributeValueMemberS{Value: "FL-9001"},
					"flight_number": &types.AttributeValueMemberS{Value: "EY123"},
				}},
			}, nil
		},
	})
	tool, ok := registry.Get("get_flight_details")
	require.True(t, ok)

	t.Run("valid arguments reach the store", func(t *testing.T) {
		out := decode(t, tool.Execute(context.Background(), json.RawMessage(`{"flight_number":"EY123","flight_date":"2026-01-20"}`)))
		assert.Equal(t, "FL-9001", out["flight_id"])
	})

	t.Run("missing required field is rejected before the store", func(t *testing.T) {
		out := decode(t, tool.Execute(context.Background(), json.RawMessage(`{"flight_number":"EY123"}`)))
		assert.Equal(t, "invalid_arguments", out["error_kind"])
		assert.Contains(t, out["message"], "get_flight_details")
	})

	t.Run("pattern violation is rejected", func(t *testing.T) {
		out := decode(t, tool.Execute(context.Background(), json.RawMessage(`{"flight_number":"FLIGHT-123","flight_date":"2026-01-20"}`)))
		assert.Equal(t, "invalid_arguments", out["error_kind"])
	})

	t.Run("malformed JSON is rejected", func(t *testing.T) {
		out := decode(t, tool.Execute(context.Background(), json.RawMessage(`{"flight_number":`)))
		assert.Equal(t, "invalid_arguments", out["error_kind"])
	})
}

func TestToolErrorsAreValues(t *testing.T) {
	registry := newTestRegistry(t, &fakeDynamo{
		query: func(*dynamodb.QueryInput) (*dynamodb.QueryOutput, error) {
			return &dynamodb.QueryOutput{}, nil
		},
	})
	tool, _ := registry.Get("get_flight_details")

	out := decode(t, tool.Execute(context.Background(), json.RawMessage(`{"flight_number":"EY999","flight_date":"2026-01-20"}`)))
	assert.Equal(t, store.ErrKindNotFound, out["error_kind"])
	assert.NotEmpty(t, out["suggestion"])
}

func TestForAgentMatchesAuthorizationMatrix(t *testing.T) {
	registry := newTestRegistry(t, &fakeDynamo{})

	expected := map[models.AgentName][]string{
		models.AgentCrewCompliance:  {"get_flight_details", "get_crew_roster", "get_crew_member"},
		models.AgentCargo:           {"get_flight_details", "get_cargo_for_flight", "get_cargo_shipment"},
		models.AgentGuestExperience: {"get_flight_details", "get_bookings_for_flight", "get_booking", "get_passengers_for_booking", "get_passengers_by_elite_tier", "get_baggage_for_booking"},
	}
	for agent, want := range expected {
		set, err := registry.ForAgent(agent)
		require.NoError(t, err)
		var got []string
		for _, tool := range set {
			got = append(got, tool.Name)
		}
		assert.Equal(t, want, got, "tool set for %s", agent)
	}

	t.Run("every agent has a tool set", func(t *testing.T) {
		for _, agent := range models.AllAgents {
			set, err := registry.ForAgent(agent)
			require.NoError(t, err)
			assert.NotEmpty(t, set, "agent %s", agent)
		}
	})

	t.Run("unknown agent is refused", func(t *testing.T) {
		_, err := registry.ForAgent(models.AgentName("catering"))
		assert.Error(t, err)
	})

	t.Run("crew compliance cannot see finance tables", func(t *testing.T) {
		set, err := registry.ForAgent(models.AgentCrewCompliance)
		require.NoError(t, err)
		for _, tool := range set {
			assert.NotEqual(t, "get_bookings_for_flight", tool.Name)
			assert.NotEqual(t, "get_cargo_for_flight", tool.Name)
		}
	})
}
