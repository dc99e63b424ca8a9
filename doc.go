/*
Package wavescope captures and generates audio signal and shows its
waveform.

# Concept

There are two independent pipelines, each of them is a small audio graph:

	Capture - input device stream -> gain -> tap;
	Tone - sine oscillator -> gain -> tap, gain -> audible output;

Pipeline is either Idle or Running. Every start builds a fresh graph and
every stop tears it down completely, no node outlives its Running phase.
Starting running pipeline stops the existing graph first.

# Sampling

While pipeline is running, its Sampler pulls the latest samples from the
tap every display frame and hands them to the Display together with the
panel title. Stopping the pipeline cancels the scheduled frame before the
tap is disposed, so the tap is never pulled after teardown.

# Threading

Controller is driven by a single cooperative thread, usually a frame
Loop or the window update. Signal itself is rendered by the audio driver
on its own path, all graph changes reach it as mutations applied at the
next processing quantum. Callbacks from the render path, like the end of
oscillator, are posted back to the controlling thread.
*/
package wavescope
