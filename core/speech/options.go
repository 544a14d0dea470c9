package speech

import "github.com/voxlink-dev/voicelink/core/audio"

type Options struct {
	ResultsCallback func(results []Result)
	EndCallback     func()
	ErrorCallback   func(err Error)

	EncodingInfo audio.EncodingInfo
}

type Option func(*Options)

func WithResultsCallback(callback func(results []Result)) Option {
	return func(o *Options) {
		o.ResultsCallback = callback
	}
}

func WithEndCallback(callback func()) Option {
	return func(o *Options) {
		o.EndCallback = callback
	}
}

func WithErrorCallback(callback func(err Error)) Option {
	return func(o *Options) {
		o.ErrorCallback = callback
	}
}

func WithEncodingInfo(encodingInfo audio.EncodingInfo) Option {
	return func(o *Options) {
		o.EncodingInfo = encodingInfo
	}
}
