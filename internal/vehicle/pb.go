package vehicle

import "google.golang.org/grpc"

// Position is one streamed vehicle position update.
type Position struct {
	DriverId string
	Lat      float64
	Lng      float64
	SpeedKph float64
	Accuracy float64
	Ts       int64
}

// Ack is returned when the stream closes.
type Ack struct{}

// TelemetryServer defines the gRPC contract for position ingest.
type TelemetryServer interface {
	StreamPositions(Telemetry_StreamPositionsServer) error
}

// RegisterTelemetryServer registers the service implementation.
func RegisterTelemetryServer(s *grpc.Server, srv TelemetryServer) {
	s.RegisterService(&grpc.ServiceDesc{
		ServiceName: "vehicle.Telemetry",
		HandlerType: (*TelemetryServer)(nil),
		Streams: []grpc.StreamDesc{{
			StreamName:    "StreamPositions",
			Handler:       _Telemetry_StreamPositions_Handler,
			ServerStreams: true,
			ClientStreams: true,
		}},
	}, srv)
}

// Telemetry_StreamPositionsServer defines the bidi stream interface.
type Telemetry_StreamPositionsServer interface {
	grpc.ServerStream
	SendAndClose(*Ack) error
	Recv() (*Position, error)
}

func _Telemetry_StreamPositions_Handler(srv interface{}, stream grpc.ServerStream) error {
	return srv.(TelemetryServer).StreamPositions(&telemetryStreamServer{ServerStream: stream})
}

type telemetryStreamServer struct {
	grpc.ServerStream
}

func (s *telemetryStreamServer) SendAndClose(*Ack) error { return nil }

func (s *telemetryStreamServer) Recv() (*Position, error) {
	msg := new(Position)
	if err := s.ServerStream.RecvMsg(msg); err != nil {
		return nil, err
	}
	return msg, nil
}
