package store

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
)

// FlightByNumberAndDate resolves a flight leg from its public identity.
func (s *Store) FlightByNumberAndDate(ctx context.Context, flightNumber, flightDate string) (*Flight, *QueryError) {
	params := map[string]any{"flight_number": flightNumber, "flight_date": flightDate}
	keyCond := expression.Key("flight_number").Equal(expression.Value(flightNumber)).
		And(expression.Key("flight_date").Equal(expression.Value(flightDate)))

	var flights []Flight
	if err := s.queryIndex(ctx, s.tables.Flights, indexFlightNumberDate, keyCond, false, 0, &flights); err != nil {
		return nil, queryFailed("flight", params, err)
	}
	if len(flights) == 0 {
		return nil, notFound("flight", params, "confirm the flight number and date; the date must be ISO formatted (YYYY-MM-DD)")
	}
	return &flights[0], nil
}

// CrewRosterByFlight lists crew assignments for a flight.
func (s *Store) CrewRosterByFlight(ctx context.Context, flightID string) ([]CrewAssignment, *QueryError) {
	params := map[string]any{"flight_id": flightID}
	keyCond := expression.Key("flight_id").Equal(expression.Value(flightID))

	var roster []CrewAssignment
	if err := s.queryIndex(ctx, s.tables.CrewRoster, indexFlightID, keyCond, false, 0, &roster); err != nil {
		return nil, queryFailed("crew roster", params, err)
	}
	return roster, nil
}

// CrewMemberByID fetches one crew member's master record.
func (s *Store) CrewMemberByID(ctx context.Context, crewMemberID string) (*CrewMember, *QueryError) {
	params := map[string]any{"crew_member_id": crewMemberID}
	var member CrewMember
	found, err := s.getOne(ctx, s.tables.CrewMembers, map[string]any{"crew_member_id": crewMemberID}, &member)
	if err != nil {
		return nil, queryFailed("crew member", params, err)
	}
	if !found {
		return nil, notFound("crew member", params, "use a crew_member_id from the flight's crew roster")
	}
	return &member, nil
}

// WorkOrdersByAircraft lists maintenance work orders for an aircraft.
func (s *Store) WorkOrdersByAircraft(ctx context.Context, registration string) ([]WorkOrder, *QueryError) {
	params := map[string]any{"aircraft_registration": registration}
	keyCond := expression.Key("aircraft_registration").Equal(expression.Value(registration))

	var orders []WorkOrder
	if err := s.queryIndex(ctx, s.tables.MaintenanceWorkOrders, indexAircraftReg, keyCond, false, 0, &orders); err != nil {
		return nil, queryFailed("maintenance work orders", params, err)
	}
	return orders, nil
}

// WorkOrdersByShift lists maintenance work orders scheduled on a shift.
func (s *Store) WorkOrdersByShift(ctx context.Context, shift string) ([]WorkOrder, *QueryError) {
	params := map[string]any{"shift": shift}
	keyCond := expression.Key("shift").Equal(expression.Value(shift))

	var orders []WorkOrder
	if err := s.queryIndex(ctx, s.tables.MaintenanceWorkOrders, indexWorkOrderShift, keyCond, false, 0, &orders); err != nil {
		return nil, queryFailed("maintenance work orders", params, err)
	}
	return orders, nil
}

// AircraftByLocationAndStatus lists aircraft at a location filtered by
// availability status.
func (s *Store) AircraftByLocationAndStatus(ctx context.Context, location, status string) ([]AircraftAvailability, *QueryError) {
	params := map[string]any{"location": location, "status": status}
	keyCond := expression.Key("location").Equal(expression.Value(location)).
		And(expression.Key("status").Equal(expression.Value(status)))

	var aircraft []AircraftAvailability
	if err := s.queryIndex(ctx, s.tables.AircraftAvailability, indexLocationStatus, keyCond, false, 0, &aircraft); err != nil {
		return nil, queryFailed("aircraft availability", params, err)
	}
	return aircraft, nil
}

// BookingsByFlight lists bookings on a flight.
func (s *Store) BookingsByFlight(ctx context.Context, flightID string) ([]Booking, *QueryError) {
	params := map[string]any{"flight_id": flightID}
	keyCond := expression.Key("flight_id").Equal(expression.Value(flightID))

	var bookings []Booking
	if err := s.queryIndex(ctx, s.tables.Bookings, indexFlightID, keyCond, false, 0, &bookings); err != nil {
		return nil, queryFailed("bookings", params, err)
	}
	return bookings, nil
}

// BookingByID fetches one booking.
func (s *Store) BookingByID(ctx context.Context, bookingID string) (*Booking, *QueryError) {
	params := map[string]any{"booking_id": bookingID}
	var booking Booking
	found, err := s.getOne(ctx, s.tables.Bookings, map[string]any{"booking_id": bookingID}, &booking)
	if err != nil {
		return nil, queryFailed("booking", params, err)
	}
	if !found {
		return nil, notFound("booking", params, "use a booking_id from the flight's booking list")
	}
	return &booking, nil
}

// PassengersByBooking lists travellers on a booking.
func (s *Store) PassengersByBooking(ctx context.Context, bookingID string) ([]Passenger, *QueryError) {
	params := map[string]any{"booking_id": bookingID}
	keyCond := expression.Key("booking_id").Equal(expression.Value(bookingID))

	var passengers []Passenger
	if err := s.queryIndex(ctx, s.tables.Passengers, indexBookingID, keyCond, false, 0, &passengers); err != nil {
		return nil, queryFailed("passengers", params, err)
	}
	return passengers, nil
}

// PassengersByEliteTier lists travellers of one elite tier.
func (s *Store) PassengersByEliteTier(ctx context.Context, tier string) ([]Passenger, *QueryError) {
	params := map[string]any{"elite_tier": tier}
	keyCond := expression.Key("elite_tier").Equal(expression.Value(tier))

	var passengers []Passenger
	if err := s.queryIndex(ctx, s.tables.Passengers, indexEliteTier, keyCond, false, 0, &passengers); err != nil {
		return nil, queryFailed("passengers", params, err)
	}
	return passengers, nil
}

// BaggageByBooking lists checked bags on a booking.
func (s *Store) BaggageByBooking(ctx context.Context, bookingID string) ([]BaggageItem, *QueryError) {
	params := map[string]any{"booking_id": bookingID}
	keyCond := expression.Key("booking_id").Equal(expression.Value(bookingID))

	var bags []BaggageItem
	if err := s.queryIndex(ctx, s.tables.Baggage, indexBookingID, keyCond, false, 0, &bags); err != nil {
		return nil, queryFailed("baggage", params, err)
	}
	return bags, nil
}

// CargoAssignmentsByFlight lists cargo shipments assigned to a flight.
func (s *Store) CargoAssignmentsByFlight(ctx context.Context, flightID string) ([]CargoFlightAssignment, *QueryError) {
	params := map[string]any{"flight_id": flightID}
	keyCond := expression.Key("flight_id").Equal(expression.Value(flightID))

	var assignments []CargoFlightAssignment
	if err := s.queryIndex(ctx, s.tables.CargoFlightAssignments, indexFlightID, keyCond, false, 0, &assignments); err != nil {
		return nil, queryFailed("cargo flight assignments", params, err)
	}
	return assignments, nil
}

// CargoShipmentByID fetches one shipment's master record.
func (s *Store) CargoShipmentByID(ctx context.Context, shipmentID string) (*CargoShipment, *QueryError) {
	params := map[string]any{"shipment_id": shipmentID}
	var shipment CargoShipment
	found, err := s.getOne(ctx, s.tables.CargoShipments, map[string]any{"shipment_id": shipmentID}, &shipment)
	if err != nil {
		return nil, queryFailed("cargo shipment", params, err)
	}
	if !found {
		return nil, notFound("cargo shipment", params, "use a shipment_id from the flight's cargo assignments")
	}
	return &shipment, nil
}

// WeatherByAirport lists forecast windows for an airport inside a time range.
// Bounds are ISO timestamps; an empty bound leaves that side open.
func (s *Store) WeatherByAirport(ctx context.Context, airport, fromTime, toTime string) ([]WeatherForecast, *QueryError) {
	params := map[string]any{"airport": airport, "from_time": fromTime, "to_time": toTime}

	keyCond := expression.Key("airport").Equal(expression.Value(airport))
	switch {
	case fromTime != "" && toTime != "":
		keyCond = keyCond.And(expression.Key("forecast_time").Between(expression.Value(fromTime), expression.Value(toTime)))
	case fromTime != "":
		keyCond = keyCond.And(expression.Key("forecast_time").GreaterThanEqual(expression.Value(fromTime)))
	case toTime != "":
		keyCond = keyCond.And(expression.Key("forecast_time").LessThanEqual(expression.Value(toTime)))
	}

	var forecasts []WeatherForecast
	if err := s.queryIndex(ctx, s.tables.Weather, "", keyCond, false, 0, &forecasts); err != nil {
		return nil, queryFailed("weather forecasts", params, err)
	}
	return forecasts, nil
}
