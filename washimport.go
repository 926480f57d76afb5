package washimport

var Version = "0.1.0"
