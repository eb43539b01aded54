package tools

import (
	"context"
	"fmt"

	"github.com/skyops/irops/pkg/models"
	"github.com/skyops/irops/pkg/store"
)

// Schemas are the validation contract: a call with missing or mistyped
// fields is rejected before the store is touched.
const (
	flightDetailsSchema = `{
		"type": "object",
		"properties": {
			"flight_number": {"type": "string", "pattern": "^[A-Za-z]{2}[0-9]{3,4}$", "description": "IATA flight number, e.g. EY123"},
			"flight_date": {"type": "string", "pattern": "^[0-9]{4}-[0-9]{2}-[0-9]{2}$", "description": "Flight date, YYYY-MM-DD"}
		},
		"required": ["flight_number", "flight_date"],
		"additionalProperties": false
	}`

	crewRosterSchema = `{
		"type": "object",
		"properties": {
			"flight_id": {"type": "string", "minLength": 1, "description": "Internal flight identifier from get_flight_details"}
		},
		"required": ["flight_id"],
		"additionalProperties": false
	}`

	crewMemberSchema = `{
		"type": "object",
		"properties": {
			"crew_member_id": {"type": "string", "minLength": 1}
		},
		"required": ["crew_member_id"],
		"additionalProperties": false
	}`

	workOrdersAircraftSchema = `{
		"type": "object",
		"properties": {
			"aircraft_registration": {"type": "string", "minLength": 1, "description": "Aircraft registration, e.g. A6-EYA"}
		},
		"required": ["aircraft_registration"],
		"additionalProperties": false
	}`

	workOrdersShiftSchema = `{
		"type": "object",
		"properties": {
			"shift": {"type": "string", "enum": ["morning", "afternoon", "night"]}
		},
		"required": ["shift"],
		"additionalProperties": false
	}`

	availableAircraftSchema = `{
		"type": "object",
		"properties": {
			"location": {"type": "string", "minLength": 3, "maxLength": 4, "description": "Airport code"},
			"status": {"type": "string", "enum": ["available", "in_maintenance", "assigned", "aog"]}
		},
		"required": ["location", "status"],
		"additionalProperties": false
	}`

	bookingsFlightSchema = `{
		"type": "object",
		"properties": {
			"flight_id": {"type": "string", "minLength": 1}
		},
		"required": ["flight_id"],
		"additionalProperties": false
	}`

	bookingSchema = `{
		"type": "object",
		"properties": {
			"booking_id": {"type": "string", "minLength": 1}
		},
		"required": ["booking_id"],
		"additionalProperties": false
	}`

	passengersBookingSchema = `{
		"type": "object",
		"properties": {
			"booking_id": {"type": "string", "minLength": 1}
		},
		"required": ["booking_id"],
		"additionalProperties": false
	}`

	passengersTierSchema = `{
		"type": "object",
		"properties": {
			"elite_tier": {"type": "string", "enum": ["platinum", "gold", "silver", "base"]}
		},
		"required": ["elite_tier"],
		"additionalProperties": false
	}`

	baggageBookingSchema = `{
		"type": "object",
		"properties": {
			"booking_id": {"type": "string", "minLength": 1}
		},
		"required": ["booking_id"],
		"additionalProperties": false
	}`

	cargoFlightSchema = `{
		"type": "object",
		"properties": {
			"flight_id": {"type": "string", "minLength": 1}
		},
		"required": ["flight_id"],
		"additionalProperties": false
	}`

	cargoShipmentSchema = `{
		"type": "object",
		"properties": {
			"shipment_id": {"type": "string", "minLength": 1}
		},
		"required": ["shipment_id"],
		"additionalProperties": false
	}`

	weatherSchema = `{
		"type": "object",
		"properties": {
			"airport": {"type": "string", "minLength": 3, "maxLength": 4},
			"from_time": {"type": "string", "description": "ISO timestamp lower bound, optional"},
			"to_time": {"type": "string", "description": "ISO timestamp upper bound, optional"}
		},
		"required": ["airport"],
		"additionalProperties": false
	}`
)

// Registry holds every operational tool, keyed by name.
type Registry struct {
	tools map[string]*Tool
}

// NewRegistry builds the full tool set over the store.
func NewRegistry(s *store.Store) (*Registry, error) {
	specs := []struct {
		name        string
		description string
		schema      string
		run         Handler
	}{
		{
			"get_flight_details",
			"Look up a flight by its flight number and date. Returns the flight leg with aircraft, route, schedule, status and passenger count.",
			flightDetailsSchema,
			func(ctx context.Context, args map[string]any) any {
				flight, qerr := s.FlightByNumberAndDate(ctx, stringArg(args, "flight_number"), stringArg(args, "flight_date"))
				if qerr != nil {
					return qerr
				}
				return flight
			},
		},
		{
			"get_crew_roster",
			"List crew assignments for a flight, including positions, duty hours and rest hours.",
			crewRosterSchema,
			func(ctx context.Context, args map[string]any) any {
				roster, qerr := s.CrewRosterByFlight(ctx, stringArg(args, "flight_id"))
				if qerr != nil {
					return qerr
				}
				return roster
			},
		},
		{
			"get_crew_member",
			"Fetch one crew member's master record: rank, base, qualifications, duty totals, licence and medical expiry.",
			crewMemberSchema,
			func(ctx context.Context, args map[string]any) any {
				member, qerr := s.CrewMemberByID(ctx, stringArg(args, "crew_member_id"))
				if qerr != nil {
					return qerr
				}
				return member
			},
		},
		{
			"get_work_orders_for_aircraft",
			"List maintenance work orders for an aircraft registration, with priority, status and estimated hours.",
			workOrdersAircraftSchema,
			func(ctx context.Context, args map[string]any) any {
				orders, qerr := s.WorkOrdersByAircraft(ctx, stringArg(args, "aircraft_registration"))
				if qerr != nil {
					return qerr
				}
				return orders
			},
		},
		{
			"get_work_orders_for_shift",
			"List maintenance work orders scheduled on a shift (morning, afternoon or night).",
			workOrdersShiftSchema,
			func(ctx context.Context, args map[string]any) any {
				orders, qerr := s.WorkOrdersByShift(ctx, stringArg(args, "shift"))
				if qerr != nil {
					return qerr
				}
				return orders
			},
		},
		{
			"get_available_aircraft",
			"List aircraft at an airport filtered by availability status, with type, seat capacity and availability window.",
			availableAircraftSchema,
			func(ctx context.Context, args map[string]any) any {
				aircraft, qerr := s.AircraftByLocationAndStatus(ctx, stringArg(args, "location"), stringArg(args, "status"))
				if qerr != nil {
					return qerr
				}
				return aircraft
			},
		},
		{
			"get_bookings_for_flight",
			"List bookings on a flight, with cabin class, fare, connection and status.",
			bookingsFlightSchema,
			func(ctx context.Context, args map[string]any) any {
				bookings, qerr := s.BookingsByFlight(ctx, stringArg(args, "flight_id"))
				if qerr != nil {
					return qerr
				}
				return bookings
			},
		},
		{
			"get_booking",
			"Fetch one booking by its identifier.",
			bookingSchema,
			func(ctx context.Context, args map[string]any) any {
				booking, qerr := s.BookingByID(ctx, stringArg(args, "booking_id"))
				if qerr != nil {
					return qerr
				}
				return booking
			},
		},
		{
			"get_passengers_for_booking",
			"List travellers on a booking, with elite tier and special-assistance flags.",
			passengersBookingSchema,
			func(ctx context.Context, args map[string]any) any {
				passengers, qerr := s.PassengersByBooking(ctx, stringArg(args, "booking_id"))
				if qerr != nil {
					return qerr
				}
				return passengers
			},
		},
		{
			"get_passengers_by_elite_tier",
			"List travellers of one elite tier (platinum, gold, silver or base).",
			passengersTierSchema,
			func(ctx context.Context, args map[string]any) any {
				passengers, qerr := s.PassengersByEliteTier(ctx, stringArg(args, "elite_tier"))
				if qerr != nil {
					return qerr
				}
				return passengers
			},
		},
		{
			"get_baggage_for_booking",
			"List checked bags on a booking, with weight, status and last scan.",
			baggageBookingSchema,
			func(ctx context.Context, args map[string]any) any {
				bags, qerr := s.BaggageByBooking(ctx, stringArg(args, "booking_id"))
				if qerr != nil {
					return qerr
				}
				return bags
			},
		},
		{
			"get_cargo_for_flight",
			"List cargo shipments assigned to a flight, with load position and status.",
			cargoFlightSchema,
			func(ctx context.Context, args map[string]any) any {
				assignments, qerr := s.CargoAssignmentsByFlight(ctx, stringArg(args, "flight_id"))
				if qerr != nil {
					return qerr
				}
				return assignments
			},
		},
		{
			"get_cargo_shipment",
			"Fetch one cargo shipment's master record: commodity, weight, revenue, perishable and dangerous-goods flags, SLA deadline.",
			cargoShipmentSchema,
			func(ctx context.Context, args map[string]any) any {
				shipment, qerr := s.CargoShipmentByID(ctx, stringArg(args, "shipment_id"))
				if qerr != nil {
					return qerr
				}
				return shipment
			},
		},
		{
			"get_weather_forecast",
			"List weather forecast windows for an airport, optionally bounded by ISO timestamps.",
			weatherSchema,
			func(ctx context.Context, args map[string]any) any {
				forecasts, qerr := s.WeatherByAirport(ctx, stringArg(args, "airport"), stringArg(args, "from_time"), stringArg(args, "to_time"))
				if qerr != nil {
					return qerr
				}
				return forecasts
			},
		},
	}

	registry := &Registry{tools: make(map[string]*Tool, len(specs))}
	for _, spec := range specs {
		tool, err := New(spec.name, spec.description, spec.schema, spec.run)
		if err != nil {
			return nil, err
		}
		registry.tools[tool.Name] = tool
	}
	return registry, nil
}

// Get returns a registered tool by name.
func (r *Registry) Get(name string) (*Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// agentToolNames is the authorization matrix: an agent sees only the tools
// over its permitted tables. Access control is enforced by construction,
// nothing else is ever registered with the agent.
var agentToolNames = map[models.AgentName][]string{
	models.AgentCrewCompliance: {
		"get_flight_details", "get_crew_roster", "get_crew_member",
	},
	models.AgentMaintenance: {
		"get_flight_details", "get_work_orders_for_aircraft", "get_work_orders_for_shift", "get_available_aircraft",
	},
	models.AgentRegulatory: {
		"get_flight_details", "get_crew_roster", "get_work_orders_for_aircraft", "get_work_orders_for_shift", "get_weather_forecast",
	},
	models.AgentNetwork: {
		"get_flight_details", "get_available_aircraft", "get_bookings_for_flight", "get_booking",
	},
	models.AgentGuestExperience: {
		"get_flight_details", "get_bookings_for_flight", "get_booking", "get_passengers_for_booking", "get_passengers_by_elite_tier", "get_baggage_for_booking",
	},
	models.AgentCargo: {
		"get_flight_details", "get_cargo_for_flight", "get_cargo_shipment",
	},
	models.AgentFinance: {
		"get_flight_details", "get_bookings_for_flight", "get_booking", "get_cargo_for_flight", "get_work_orders_for_aircraft",
	},
}

// ForAgent returns the tool set an agent is authorized to use.
func (r *Registry) ForAgent(agent models.AgentName) ([]*Tool, error) {
	names, ok := agentToolNames[agent]
	if !ok {
		return nil, fmt.Errorf("tools: unknown agent %q", agent)
	}
	set := make([]*Tool, 0, len(names))
	for _, name := range names {
		tool, ok := r.tools[name]
		if !ok {
			return nil, fmt.Errorf("tools: %s references unregistered tool %q", agent, name)
		}
		set = append(set, tool)
	}
	return set, nil
}
