// Package kaiten simulates a conveyor-belt sushi restaurant.
//
// A kitchen places plates on a bounded rotating belt, client groups arrive
// at random, wait in VIP or Normal queues, share tables with parties of the
// same size, eat plates that pass by and pay on leaving. A manager may change
// the simulation speed, close the restaurant or evacuate it.
//
// The root package wires every component and runs a simulation to
// completion:
//
//	cfg := kaiten.DefaultConfig()
//	cfg.Arrival.Groups = 20
//	srv, _ := kaiten.New(cfg)
//	rep, _ := srv.Run(ctx)
//	_ = rep.Write(os.Stdout)
//
// The returned report lists produced, sold, remaining and wasted plates and
// checks that every produced plate is accounted for.
package kaiten
