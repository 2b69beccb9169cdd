// Package flasher drives the two vendor tools of an EDL flash: QSaharaServer
// to send the programmer over Sahara and fh_loader to talk Firehose.
//
// Resolve locates the tools and the device port, and New wraps them in a
// Flasher whose steps report "<label>...OK" or "<label>...Error" to an
// events.Emitter:
//
//	tc, err := flasher.Resolve(cfg.Flasher, serialport.NewFinder())
//	f, err := flasher.New(cfg.Flasher, tc, flasher.Options{Emitter: emitter})
//	_, err = f.Sahara(ctx, "Send loader", "-s", "13:prog_firehose_ddr.elf")
//
// Only one step runs at a time; a step started while another owns the
// device fails with SERVICE_UNAVAILABLE unless DeviceWait allows it to wait.
package flasher
