package vehicle

import (
	"io"

	"github.com/google/uuid"

	"github.com/AliEdi10/artinbooking-sub001/internal/availability/domain"
)

// Server implements TelemetryServer over an Observer.
type Server struct {
	observer *Observer
}

// NewServer constructs a server.
func NewServer(observer *Observer) *Server {
	return &Server{observer: observer}
}

// StreamPositions ingests vehicle positions and updates the observer. Updates
// with unparsable driver ids are skipped.
func (s *Server) StreamPositions(stream Telemetry_StreamPositionsServer) error {
	for {
		msg, err := stream.Recv()
		if err == io.EOF {
			return stream.SendAndClose(&Ack{})
		}
		if err != nil {
			return err
		}
		driverID, err := uuid.Parse(msg.DriverId)
		if err != nil {
			continue
		}
		s.observer.Update(stream.Context(), driverID, domain.Location{Lat: msg.Lat, Lng: msg.Lng}, msg.SpeedKph, msg.Accuracy)
	}
}
