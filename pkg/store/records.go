package store

import (
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Decimal holds a DynamoDB number verbatim. Monetary and weight attributes
// stay exact in storage and in tool output; conversion to float64 happens
// only when a downstream consumer asks for it.
type Decimal string

func (d *Decimal) UnmarshalDynamoDBAttributeValue(av types.AttributeValue) error {
	switch v := av.(type) {
	case *types.AttributeValueMemberN:
		*d = Decimal(v.Value)
		return nil
	case *types.AttributeValueMemberS:
		*d = Decimal(v.Value)
		return nil
	case *types.AttributeValueMemberNULL:
		*d = ""
		return nil
	default:
		return fmt.Errorf("store: cannot unmarshal %T into Decimal", av)
	}
}

func (d Decimal) MarshalDynamoDBAttributeValue() (types.AttributeValue, error) {
	if d == "" {
		return &types.AttributeValueMemberNULL{Value: true}, nil
	}
	return &types.AttributeValueMemberN{Value: string(d)}, nil
}

// Float64 converts at the boundary. Empty decimals read as zero.
func (d Decimal) Float64() float64 {
	if d == "" {
		return 0
	}
	f, err := strconv.ParseFloat(string(d), 64)
	if err != nil {
		return 0
	}
	return f
}

// Flight is a scheduled or operating flight leg.
type Flight struct {
	FlightID             string `dynamodbav:"flight_id" json:"flight_id"`
	FlightNumber         string `dynamodbav:"flight_number" json:"flight_number"`
	FlightDate           string `dynamodbav:"flight_date" json:"flight_date"`
	Origin               string `dynamodbav:"origin" json:"origin"`
	Destination          string `dynamodbav:"destination" json:"destination"`
	ScheduledDeparture   string `dynamodbav:"scheduled_departure" json:"scheduled_departure"`
	ScheduledArrival     string `dynamodbav:"scheduled_arrival" json:"scheduled_arrival"`
	AircraftRegistration string `dynamodbav:"aircraft_registration" json:"aircraft_registration"`
	AircraftType         string `dynamodbav:"aircraft_type" json:"aircraft_type"`
	Status               string `dynamodbav:"status" json:"status"`
	GateNumber           string `dynamodbav:"gate_number,omitempty" json:"gate_number,omitempty"`
	PassengerCount       int    `dynamodbav:"passenger_count" json:"passenger_count"`
}

// CrewAssignment is one crew member's assignment to a flight.
type CrewAssignment struct {
	FlightID        string  `dynamodbav:"flight_id" json:"flight_id"`
	CrewMemberID    string  `dynamodbav:"crew_member_id" json:"crew_member_id"`
	Position        string  `dynamodbav:"position" json:"position"`
	ReportTime      string  `dynamodbav:"report_time" json:"report_time"`
	ReleaseTime     string  `dynamodbav:"release_time" json:"release_time"`
	DutyHours       Decimal `dynamodbav:"duty_hours" json:"duty_hours"`
	RestHoursBefore Decimal `dynamodbav:"rest_hours_before" json:"rest_hours_before"`
}

// CrewMember is the master record for one crew member.
type CrewMember struct {
	CrewMemberID       string   `dynamodbav:"crew_member_id" json:"crew_member_id"`
	Name               string   `dynamodbav:"name" json:"name"`
	Rank               string   `dynamodbav:"rank" json:"rank"`
	BaseAirport        string   `dynamodbav:"base_airport" json:"base_airport"`
	Qualifications     []string `dynamodbav:"qualifications" json:"qualifications"`
	DutyHoursThisMonth Decimal  `dynamodbav:"duty_hours_this_month" json:"duty_hours_this_month"`
	MedicalExpiry      string   `dynamodbav:"medical_expiry" json:"medical_expiry"`
	LicenseExpiry      string   `dynamodbav:"license_expiry" json:"license_expiry"`
}

// WorkOrder is a maintenance work order on an aircraft.
type WorkOrder struct {
	WorkOrderID          string  `dynamodbav:"work_order_id" json:"work_order_id"`
	AircraftRegistration string  `dynamodbav:"aircraft_registration" json:"aircraft_registration"`
	Shift                string  `dynamodbav:"shift" json:"shift"`
	Description          string  `dynamodbav:"description" json:"description"`
	Priority             string  `dynamodbav:"priority" json:"priority"`
	Status               string  `dynamodbav:"status" json:"status"`
	EstimatedHours       Decimal `dynamodbav:"estimated_hours" json:"estimated_hours"`
	DueBy                string  `dynamodbav:"due_by" json:"due_by"`
	ATAChapter           string  `dynamodbav:"ata_chapter,omitempty" json:"ata_chapter,omitempty"`
}

// AircraftAvailability describes an aircraft's readiness at a location.
type AircraftAvailability struct {
	AircraftRegistration string `dynamodbav:"aircraft_registration" json:"aircraft_registration"`
	AircraftType         string `dynamodbav:"aircraft_type" json:"aircraft_type"`
	Location             string `dynamodbav:"location" json:"location"`
	Status               string `dynamodbav:"status" json:"status"`
	AvailableFrom        string `dynamodbav:"available_from" json:"available_from"`
	SeatCapacity         int    `dynamodbav:"seat_capacity" json:"seat_capacity"`
	ETOPSCapable         bool   `dynamodbav:"etops_capable" json:"etops_capable"`
}

// Booking is one reservation on a flight.
type Booking struct {
	BookingID      string  `dynamodbav:"booking_id" json:"booking_id"`
	FlightID       string  `dynamodbav:"flight_id" json:"flight_id"`
	PassengerCount int     `dynamodbav:"passenger_count" json:"passenger_count"`
	CabinClass     string  `dynamodbav:"cabin_class" json:"cabin_class"`
	FareAmount     Decimal `dynamodbav:"fare_amount" json:"fare_amount"`
	Currency       string  `dynamodbav:"currency" json:"currency"`
	ConnectingTo   string  `dynamodbav:"connecting_to,omitempty" json:"connecting_to,omitempty"`
	Status         string  `dynamodbav:"status" json:"status"`
}

// Passenger is one traveller on a booking.
type Passenger struct {
	PassengerID         string `dynamodbav:"passenger_id" json:"passenger_id"`
	BookingID           string `dynamodbav:"booking_id" json:"booking_id"`
	Name                string `dynamodbav:"name" json:"name"`
	EliteTier           string `dynamodbav:"elite_tier" json:"elite_tier"`
	SpecialAssistance   bool   `dynamodbav:"special_assistance" json:"special_assistance"`
	ContactPhone        string `dynamodbav:"contact_phone,omitempty" json:"contact_phone,omitempty"`
	UnaccompaniedMinor  bool   `dynamodbav:"unaccompanied_minor" json:"unaccompanied_minor"`
	FrequentFlyerNumber string `dynamodbav:"frequent_flyer_number,omitempty" json:"frequent_flyer_number,omitempty"`
}

// BaggageItem is one checked bag.
type BaggageItem struct {
	BagTagNumber string  `dynamodbav:"bag_tag_number" json:"bag_tag_number"`
	BookingID    string  `dynamodbav:"booking_id" json:"booking_id"`
	WeightKG     Decimal `dynamodbav:"weight_kg" json:"weight_kg"`
	Status       string  `dynamodbav:"status" json:"status"`
	LastScanned  string  `dynamodbav:"last_scanned,omitempty" json:"last_scanned,omitempty"`
}

// CargoShipment is the master record for a cargo shipment.
type CargoShipment struct {
	ShipmentID       string  `dynamodbav:"shipment_id" json:"shipment_id"`
	AirWaybillNumber string  `dynamodbav:"air_waybill_number" json:"air_waybill_number"`
	Commodity        string  `dynamodbav:"commodity" json:"commodity"`
	WeightKG         Decimal `dynamodbav:"weight_kg" json:"weight_kg"`
	Perishable       bool    `dynamodbav:"perishable" json:"perishable"`
	DangerousGoods   bool    `dynamodbav:"dangerous_goods" json:"dangerous_goods"`
	RevenueAmount    Decimal `dynamodbav:"revenue_amount" json:"revenue_amount"`
	SLADeadline      string  `dynamodbav:"sla_deadline,omitempty" json:"sla_deadline,omitempty"`
}

// CargoFlightAssignment binds a shipment to a flight.
type CargoFlightAssignment struct {
	FlightID     string `dynamodbav:"flight_id" json:"flight_id"`
	ShipmentID   string `dynamodbav:"shipment_id" json:"shipment_id"`
	LoadPosition string `dynamodbav:"load_position,omitempty" json:"load_position,omitempty"`
	Status       string `dynamodbav:"status" json:"status"`
}

// WeatherForecast is one forecast window at an airport.
type WeatherForecast struct {
	Airport        string  `dynamodbav:"airport" json:"airport"`
	ForecastTime   string  `dynamodbav:"forecast_time" json:"forecast_time"`
	Conditions     string  `dynamodbav:"conditions" json:"conditions"`
	VisibilityKM   Decimal `dynamodbav:"visibility_km" json:"visibility_km"`
	WindSpeedKT    Decimal `dynamodbav:"wind_speed_kt" json:"wind_speed_kt"`
	WindDirection  int     `dynamodbav:"wind_direction" json:"wind_direction"`
	TemperatureC   Decimal `dynamodbav:"temperature_c" json:"temperature_c"`
	CrosswindAlert bool    `dynamodbav:"crosswind_alert" json:"crosswind_alert"`
}
