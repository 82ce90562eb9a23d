// Package generator produces synthetic sensor readings on a fixed schedule.
//
// Every tick it draws one Reading from a seeded Source and writes three
// points through the sensor recorder: dht11_sensor (temperature, humidity),
// sound_sensor and dust_sensor. Write failures are logged and never stop
// the loop. Run is cancelled through its context.
//
//	gen := generator.New(recorder, generator.Options{
//	    Interval: 5 * time.Second,
//	    Seed:     uint64(time.Now().Unix()),
//	    Logger:   log,
//	})
//	go gen.Run(ctx)
package generator
