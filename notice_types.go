package voevent

import "strconv"

// NoticeType identifies the category of a GCN notice (the VOEvent Packet_Type param).
type NoticeType int

// Well-known GCN notice types.
const (
	GRBCoords  NoticeType = 1
	TestCoords NoticeType = 2
	ImAlive    NoticeType = 3
	KillSocket NoticeType = 4

	SwiftBATGRBAlert     NoticeType = 60
	SwiftBATGRBPosAck    NoticeType = 61
	SwiftBATGRBPosNack   NoticeType = 62
	SwiftBATGRBLC        NoticeType = 63
	SwiftBATScaledMap    NoticeType = 64
	SwiftFOMObs          NoticeType = 65
	SwiftSCSlew          NoticeType = 66
	SwiftXRTPosition     NoticeType = 67
	SwiftXRTSpectrum     NoticeType = 68
	SwiftXRTImage        NoticeType = 69
	SwiftXRTLC           NoticeType = 70
	SwiftXRTCentroid     NoticeType = 71
	SwiftUVOTDBurst      NoticeType = 72
	SwiftUVOTFChart      NoticeType = 73
	SwiftBATGRBLCProc    NoticeType = 76
	SwiftXRTSpectrumProc NoticeType = 77
	SwiftXRTImageProc    NoticeType = 78
	SwiftUVOTDBurstProc  NoticeType = 79
	SwiftUVOTFChartProc  NoticeType = 80
	SwiftUVOTPos         NoticeType = 81
	SwiftBATGRBPosTest   NoticeType = 82
	SwiftPointDir        NoticeType = 83
	SwiftBATTrans        NoticeType = 84
	SwiftUVOTPosNack     NoticeType = 89
	SwiftBATSubThreshold NoticeType = 97
	SwiftBATSlewPos      NoticeType = 98

	AGILEGRBWakeup  NoticeType = 100
	AGILEGRBGround  NoticeType = 101
	AGILEGRBRefined NoticeType = 102

	FermiGBMAlert       NoticeType = 110
	FermiGBMFltPos      NoticeType = 111
	FermiGBMGndPos      NoticeType = 112
	FermiGBMLC          NoticeType = 113
	FermiGBMGndInternal NoticeType = 114
	FermiGBMFinPos      NoticeType = 115
	FermiGBMTrans       NoticeType = 118
	FermiGBMPosTest     NoticeType = 119
	FermiLATPosIni      NoticeType = 120
	FermiLATPosUpd      NoticeType = 121
	FermiLATPosDiag     NoticeType = 122
	FermiLATTrans       NoticeType = 123
	FermiLATPosTest     NoticeType = 124
	FermiLATMonitor     NoticeType = 125
	FermiSCSlew         NoticeType = 126
	FermiLATGnd         NoticeType = 127
	FermiLATOffline     NoticeType = 128
	FermiPointDir       NoticeType = 129
	FermiGBMSubthresh   NoticeType = 131

	MAXIUnknown NoticeType = 134
	MAXIKnown   NoticeType = 135
	MAXITest    NoticeType = 136

	LVCPreliminary NoticeType = 150
	LVCInitial     NoticeType = 151
	LVCUpdate      NoticeType = 152
	LVCTest        NoticeType = 153
	LVCCounterpart NoticeType = 154
	LVCRetraction  NoticeType = 164

	AMONICECubeCoinc        NoticeType = 157
	AMONICECubeHESE         NoticeType = 158
	ICECubeAstrotrackGold   NoticeType = 173
	ICECubeAstrotrackBronze NoticeType = 174
)

var noticeTypeNames = map[NoticeType]string{
	GRBCoords:  "GRB_COORDS",
	TestCoords: "TEST_COORDS",
	ImAlive:    "IM_ALIVE",
	KillSocket: "KILL_SOCKET",

	SwiftBATGRBAlert:     "SWIFT_BAT_GRB_ALERT",
	SwiftBATGRBPosAck:    "SWIFT_BAT_GRB_POS_ACK",
	SwiftBATGRBPosNack:   "SWIFT_BAT_GRB_POS_NACK",
	SwiftBATGRBLC:        "SWIFT_BAT_GRB_LC",
	SwiftBATScaledMap:    "SWIFT_BAT_SCALEDMAP",
	SwiftFOMObs:          "SWIFT_FOM_OBS",
	SwiftSCSlew:          "SWIFT_SC_SLEW",
	SwiftXRTPosition:     "SWIFT_XRT_POSITION",
	SwiftXRTSpectrum:     "SWIFT_XRT_SPECTRUM",
	SwiftXRTImage:        "SWIFT_XRT_IMAGE",
	SwiftXRTLC:           "SWIFT_XRT_LC",
	SwiftXRTCentroid:     "SWIFT_XRT_CENTROID",
	SwiftUVOTDBurst:      "SWIFT_UVOT_DBURST",
	SwiftUVOTFChart:      "SWIFT_UVOT_FCHART",
	SwiftBATGRBLCProc:    "SWIFT_BAT_GRB_LC_PROC",
	SwiftXRTSpectrumProc: "SWIFT_XRT_SPECTRUM_PROC",
	SwiftXRTImageProc:    "SWIFT_XRT_IMAGE_PROC",
	SwiftUVOTDBurstProc:  "SWIFT_UVOT_DBURST_PROC",
	SwiftUVOTFChartProc:  "SWIFT_UVOT_FCHART_PROC",
	SwiftUVOTPos:         "SWIFT_UVOT_POS",
	SwiftBATGRBPosTest:   "SWIFT_BAT_GRB_POS_TEST",
	SwiftPointDir:        "SWIFT_POINTDIR",
	SwiftBATTrans:        "SWIFT_BAT_TRANS",
	SwiftUVOTPosNack:     "SWIFT_UVOT_POS_NACK",
	SwiftBATSubThreshold: "SWIFT_BAT_SUB_THRESHOLD",
	SwiftBATSlewPos:      "SWIFT_BAT_SLEW_POS",

	AGILEGRBWakeup:  "AGILE_GRB_WAKEUP",
	AGILEGRBGround:  "AGILE_GRB_GROUND",
	AGILEGRBRefined: "AGILE_GRB_REFINED",

	FermiGBMAlert:       "FERMI_GBM_ALERT",
	FermiGBMFltPos:      "FERMI_GBM_FLT_POS",
	FermiGBMGndPos:      "FERMI_GBM_GND_POS",
	FermiGBMLC:          "FERMI_GBM_LC",
	FermiGBMGndInternal: "FERMI_GBM_GND_INTERNAL",
	FermiGBMFinPos:      "FERMI_GBM_FIN_POS",
	FermiGBMTrans:       "FERMI_GBM_TRANS",
	FermiGBMPosTest:     "FERMI_GBM_POS_TEST",
	FermiLATPosIni:      "FERMI_LAT_POS_INI",
	FermiLATPosUpd:      "FERMI_LAT_POS_UPD",
	FermiLATPosDiag:     "FERMI_LAT_POS_DIAG",
	FermiLATTrans:       "FERMI_LAT_TRANS",
	FermiLATPosTest:     "FERMI_LAT_POS_TEST",
	FermiLATMonitor:     "FERMI_LAT_MONITOR",
	FermiSCSlew:         "FERMI_SC_SLEW",
	FermiLATGnd:         "FERMI_LAT_GND",
	FermiLATOffline:     "FERMI_LAT_OFFLINE",
	FermiPointDir:       "FERMI_POINTDIR",
	FermiGBMSubthresh:   "FERMI_GBM_SUBTHRESH",

	MAXIUnknown: "MAXI_UNKNOWN",
	MAXIKnown:   "MAXI_KNOWN",
	MAXITest:    "MAXI_TEST",

	LVCPreliminary: "LVC_PRELIMINARY",
	LVCInitial:     "LVC_INITIAL",
	LVCUpdate:      "LVC_UPDATE",
	LVCTest:        "LVC_TEST",
	LVCCounterpart: "LVC_COUNTERPART",
	LVCRetraction:  "LVC_RETRACTION",

	AMONICECubeCoinc:        "AMON_ICECUBE_COINC",
	AMONICECubeHESE:         "AMON_ICECUBE_HESE",
	ICECubeAstrotrackGold:   "ICECUBE_ASTROTRACK_GOLD",
	ICECubeAstrotrackBronze: "ICECUBE_ASTROTRACK_BRONZE",
}

// String returns the GCN name of the notice type, or its number if unknown.
func (t NoticeType) String() string {
	if name, ok := noticeTypeNames[t]; ok {
		return name
	}
	return strconv.Itoa(int(t))
}
