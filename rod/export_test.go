package rod

var Classify = classify
